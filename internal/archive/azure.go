// Package archive uploads completed job results to Azure Blob Storage for
// long-term keeping, independent of the job store's retention window.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/sirupsen/logrus"

	"github.com/topicpulse/topicpulse/internal/models"
)

// ResultArchive stores completed job results as JSON blobs named by job id.
type ResultArchive struct {
	client        *azblob.Client
	containerName string
}

// NewResultArchive creates an archive client using managed identity.
func NewResultArchive(accountName, containerName string) (*ResultArchive, error) {
	if accountName == "" {
		return nil, fmt.Errorf("storage account name is required")
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
	client, err := azblob.NewClient(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
	}

	a := &ResultArchive{
		client:        client,
		containerName: containerName,
	}

	if err := a.ensureContainer(); err != nil {
		return nil, fmt.Errorf("failed to ensure container exists: %w", err)
	}

	return a, nil
}

func (a *ResultArchive) ensureContainer() error {
	ctx := context.Background()

	_, err := a.client.CreateContainer(ctx, a.containerName, nil)
	if err != nil {
		if !strings.Contains(err.Error(), "ContainerAlreadyExists") {
			return fmt.Errorf("failed to create container: %w", err)
		}
		logrus.Debugf("Container %s already exists", a.containerName)
	} else {
		logrus.Infof("Created container %s", a.containerName)
	}

	return nil
}

// StoreResult uploads the job record, including its result, as
// results/<job_id>.json.
func (a *ResultArchive) StoreResult(ctx context.Context, job *models.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.ID, err)
	}

	blobName := fmt.Sprintf("results/%s.json", job.ID)
	_, err = a.client.UploadBuffer(ctx, a.containerName, blobName, data, &azblob.UploadBufferOptions{})
	if err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", blobName, err)
	}

	logrus.Infof("Archived result for job %s to blob storage", job.ID)
	return nil
}
