package interfaces

import (
	"context"

	"github.com/torus-io/assetpipe/pkg/domain/model"
)

// DriveClient defines read operations against the cloud storage provider
type DriveClient interface {
	// ListChildren returns the first page of children of a folder, ordered by
	// name. Provider errors are logged and yield an empty slice so that one
	// bad folder does not abort a whole enumeration run.
	ListChildren(ctx context.Context, folderID string) []model.RemoteNode

	// FetchBytes downloads the full content of a file
	FetchBytes(ctx context.Context, fileID string) ([]byte, error)
}

// DriveFactory builds DriveClient instances from shared, already-obtained
// credentials. The provider SDK client is not safely shared across
// goroutines, so each pool worker constructs its own client through the
// factory; construction must never trigger interactive authentication.
type DriveFactory interface {
	NewClient(ctx context.Context) (DriveClient, error)
}
