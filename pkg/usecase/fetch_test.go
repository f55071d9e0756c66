package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/torus-io/assetpipe/pkg/domain/interfaces"
	"github.com/torus-io/assetpipe/pkg/domain/model"
	"github.com/torus-io/assetpipe/pkg/usecase"
)

type mockDriveClient struct {
	listChildren func(ctx context.Context, folderID string) []model.RemoteNode
	fetchBytes   func(ctx context.Context, fileID string) ([]byte, error)
}

func (m *mockDriveClient) ListChildren(ctx context.Context, folderID string) []model.RemoteNode {
	if m.listChildren == nil {
		return nil
	}
	return m.listChildren(ctx, folderID)
}

func (m *mockDriveClient) FetchBytes(ctx context.Context, fileID string) ([]byte, error) {
	if m.fetchBytes == nil {
		return nil, goerr.New("fetchBytes not configured")
	}
	return m.fetchBytes(ctx, fileID)
}

type mockDriveFactory struct {
	client interfaces.DriveClient
	err    error
}

func (m *mockDriveFactory) NewClient(ctx context.Context) (interfaces.DriveClient, error) {
	return m.client, m.err
}

func remoteFolder(id, name string) model.RemoteNode {
	return model.RemoteNode{ID: id, Name: name, Kind: model.NodeFolder}
}

func remoteFile(id, name string) model.RemoteNode {
	return model.RemoteNode{ID: id, Name: name, Kind: model.NodeFile}
}

func treeClient(tree map[string][]model.RemoteNode, fetch func(ctx context.Context, fileID string) ([]byte, error)) *mockDriveClient {
	return &mockDriveClient{
		listChildren: func(_ context.Context, folderID string) []model.RemoteNode {
			return tree[folderID]
		},
		fetchBytes: fetch,
	}
}

func TestDownloadAll(t *testing.T) {
	ctx := context.Background()

	// One supplier; SKU-001 has a photos folder with a duplicate file name
	// and one failing file, SKU-002 has no photos folder at all
	tree := map[string][]model.RemoteNode{
		"root": {remoteFolder("sup1", "Acme")},
		"sup1": {remoteFolder("sku1", "SKU-001"), remoteFolder("sku2", "SKU-002"), remoteFile("x1", "readme.txt")},
		"sku1": {remoteFolder("ph1", "Photos"), remoteFile("n1", "notes.txt")},
		"ph1":  {remoteFile("f1", "a.jpg"), remoteFile("f2", "a.jpg"), remoteFile("f3", "b.png"), remoteFile("f4", "doc.pdf")},
		"sku2": {remoteFile("f9", "c.jpg")},
	}
	fetch := func(_ context.Context, fileID string) ([]byte, error) {
		if fileID == "f3" {
			return nil, goerr.New("transfer interrupted")
		}
		return []byte("data-" + fileID), nil
	}
	factory := &mockDriveFactory{client: treeClient(tree, fetch)}

	fetcher := usecase.NewFetcher(factory, usecase.WithWorkers(2), usecase.WithAutoConfirm())
	outputDir := t.TempDir()

	summary, err := fetcher.DownloadAll(ctx, "root", outputDir)
	gt.NoError(t, err)
	gt.False(t, summary.Declined)
	gt.Number(t, summary.Downloaded).Equal(2)
	gt.Number(t, summary.Failed).Equal(1)

	// Duplicate names get a numeric suffix instead of overwriting each other
	first, err := os.ReadFile(filepath.Join(outputDir, "SKU-001", "a.jpg"))
	gt.NoError(t, err)
	gt.Value(t, string(first)).Equal("data-f1")

	second, err := os.ReadFile(filepath.Join(outputDir, "SKU-001", "a_1.jpg"))
	gt.NoError(t, err)
	gt.Value(t, string(second)).Equal("data-f2")

	_, err = os.Stat(filepath.Join(outputDir, "SKU-001", "b.png"))
	gt.Error(t, err)
	_, err = os.Stat(filepath.Join(outputDir, "SKU-002"))
	gt.Error(t, err)
}

func TestDownloadAllDeclined(t *testing.T) {
	ctx := context.Background()

	var fetchCalls atomic.Int32
	tree := map[string][]model.RemoteNode{
		"root": {remoteFolder("sup1", "Acme")},
	}
	fetch := func(_ context.Context, fileID string) ([]byte, error) {
		fetchCalls.Add(1)
		return []byte("data"), nil
	}
	factory := &mockDriveFactory{client: treeClient(tree, fetch)}

	fetcher := usecase.NewFetcher(factory, usecase.WithConfirmer(
		func(ctx context.Context, prompt string) bool { return false },
	))

	summary, err := fetcher.DownloadAll(ctx, "root", t.TempDir())
	gt.NoError(t, err)
	gt.True(t, summary.Declined)
	gt.Number(t, summary.Downloaded).Equal(0)
	gt.Number(t, summary.Failed).Equal(0)
	gt.Number(t, int(fetchCalls.Load())).Equal(0)
}

func TestDownloadAllNoSuppliers(t *testing.T) {
	ctx := context.Background()

	factory := &mockDriveFactory{client: treeClient(map[string][]model.RemoteNode{}, nil)}
	fetcher := usecase.NewFetcher(factory, usecase.WithAutoConfirm())

	_, err := fetcher.DownloadAll(ctx, "empty-root", t.TempDir())
	gt.Error(t, err)
}

func TestDownloadAllFactoryError(t *testing.T) {
	ctx := context.Background()

	factory := &mockDriveFactory{err: goerr.New("bad credentials")}
	fetcher := usecase.NewFetcher(factory, usecase.WithAutoConfirm())

	_, err := fetcher.DownloadAll(ctx, "root", t.TempDir())
	gt.Error(t, err)
}
