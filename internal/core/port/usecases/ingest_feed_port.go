package usecases_port

import (
	"context"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
)

type IngestFeedPort interface {
	Execute(ctx context.Context) (domain.IngestStats, error)
}
