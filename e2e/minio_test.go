package e2e_test

import (
	"context"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"
)

// minioServer holds the connection details of the shared container.
type minioServer struct {
	Endpoint  string
	AccessKey string
	SecretKey string
}

var (
	minioOnce      sync.Once
	minioShared    minioServer
	minioContainer *tcminio.MinioContainer
	minioErr       error
)

// getSharedMinio returns a MinIO server shared by all E2E tests.
// The container is reused across all tests for performance.
func getSharedMinio(t *testing.T) minioServer {
	t.Helper()

	minioOnce.Do(func() {
		ctx := context.Background()

		container, err := tcminio.Run(ctx,
			"minio/minio:RELEASE.2024-01-16T16-07-38Z",
			tcminio.WithUsername("docrepo"),
			tcminio.WithPassword("docrepo-secret"),
		)
		if err != nil {
			minioErr = err
			return
		}
		minioContainer = container

		endpoint, err := container.ConnectionString(ctx)
		if err != nil {
			minioErr = err
			return
		}

		minioShared = minioServer{
			Endpoint:  endpoint,
			AccessKey: container.Username,
			SecretKey: container.Password,
		}
	})

	if minioErr != nil {
		t.Fatalf("failed to start minio container: %v", minioErr)
	}

	return minioShared
}

func stopSharedMinio() {
	if minioContainer == nil {
		return
	}
	_ = testcontainers.TerminateContainer(minioContainer)
}
