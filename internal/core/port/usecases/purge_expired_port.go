package usecases_port

import "context"

type PurgeExpiredPort interface {
	Execute(ctx context.Context) (int64, error)
}
