package service

import (
	"context"

	"github.com/BuzzLyutic/lifesync/internal/model"
	"github.com/BuzzLyutic/lifesync/internal/repo"
)

type SyncService struct {
	tasks   repo.TaskRepository
	clients repo.ClientRepository
	now     Clock
}

func NewSyncService(tasks repo.TaskRepository, clients repo.ClientRepository, now Clock) *SyncService {
	return &SyncService{tasks: tasks, clients: clients, now: now}
}

// Sync pushes the device's tasks and returns every task of the owner that
// changed after the device's cursor. Incoming tasks overwrite stored ones
// without comparing timestamps. The batch is validated up front and then
// applied in a single transaction, so it lands entirely or not at all.
func (s *SyncService) Sync(ctx context.Context, owner string, req model.SyncRequest) (model.SyncResponse, error) {
	now := s.now()

	batch := make([]model.Task, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		if err := validateTask(t); err != nil {
			return model.SyncResponse{}, err
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		batch = append(batch, t)
	}

	serverTime, changed, err := s.tasks.SyncBatch(ctx, owner, batch, s.now, req.LastSync)
	if err != nil {
		return model.SyncResponse{}, err
	}

	return model.SyncResponse{
		Success:      true,
		ServerTime:   serverTime,
		UpdatedTasks: changed,
	}, nil
}

func (s *SyncService) Client(ctx context.Context, owner string) (model.Client, error) {
	return s.clients.Get(ctx, owner)
}
