package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/heat-risk-service/internal/domain"
)

// MultiLoader fans a batch out to several loaders in order. The first failure
// aborts the batch; loaders must tolerate the redelivery that follows.
type MultiLoader []BatchLoader

func (m MultiLoader) LoadBatch(ctx context.Context, batch []domain.AssessedSubmission) error {
	for i, l := range m {
		if err := l.LoadBatch(ctx, batch); err != nil {
			return fmt.Errorf("loader %d: %w", i, err)
		}
	}
	return nil
}
