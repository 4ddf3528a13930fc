package usecase

import (
	"context"
	"net/url"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
)

// MiaService serves the FAQ entries of the help assistant, ordered by their
// position unless the client sorts otherwise.
type MiaService struct {
	entries *crud.Factory[domain.Mia, *domain.Mia]
}

func NewMiaService(entries *crud.Factory[domain.Mia, *domain.Mia]) *MiaService {
	return &MiaService{entries: entries}
}

func (s *MiaService) List(ctx context.Context, actor domain.Actor, params url.Values) (*crud.ListResult[domain.Mia], error) {
	var pre bson.M
	if !actor.IsStaff() {
		pre = bson.M{"isActive": true}
	}
	if params.Get("sort") == "" {
		shaped := make(url.Values, len(params)+1)
		for k, v := range params {
			shaped[k] = v
		}
		shaped.Set("sort", "order")
		params = shaped
	}
	return s.entries.List(ctx, pre, params)
}

func (s *MiaService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Mia, error) {
	entry, err := s.entries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entry.IsActive && !actor.IsStaff() {
		return nil, domain.NotFound("No mia for this id " + id)
	}
	return entry, nil
}

func (s *MiaService) Create(ctx context.Context, payload map[string]interface{}) (*domain.Mia, error) {
	_, hasActive := payload["isActive"]
	return s.entries.Create(ctx, payload, func(_ context.Context, m *domain.Mia) error {
		if !hasActive {
			m.IsActive = true
		}
		return nil
	})
}

func (s *MiaService) Update(ctx context.Context, id string, payload map[string]interface{}) (*domain.Mia, error) {
	return s.entries.Update(ctx, id, payload)
}

func (s *MiaService) Delete(ctx context.Context, id string) error {
	return s.entries.Delete(ctx, id)
}
