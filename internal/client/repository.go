package client

import (
	"context"
	"fmt"

	"charhub/pkg/models"
)

// Repository is where create/update submissions go. The filter view never
// reads from it.
type Repository interface {
	List(ctx context.Context) ([]models.Character, error)
	Create(ctx context.Context, f Fields) (models.Character, error)
	Update(ctx context.Context, id int64, f Fields) (models.Character, error)
}

const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// RemoteRepository writes to the proxy's scratch list.
type RemoteRepository struct {
	API *APIClient
}

func NewRemoteRepository(api *APIClient) *RemoteRepository {
	return &RemoteRepository{API: api}
}

func (r *RemoteRepository) List(ctx context.Context) ([]models.Character, error) {
	return r.API.ListPersonajes(ctx)
}

func (r *RemoteRepository) Create(ctx context.Context, f Fields) (models.Character, error) {
	return r.API.CreatePersonaje(ctx, f)
}

func (r *RemoteRepository) Update(ctx context.Context, id int64, f Fields) (models.Character, error) {
	return r.API.UpdatePersonaje(ctx, id, f)
}

// NewRepository picks the repository for a source policy name.
func NewRepository(source string, local *LocalList, api *APIClient) (Repository, error) {
	switch source {
	case "", SourceLocal:
		return local, nil
	case SourceRemote:
		return NewRemoteRepository(api), nil
	default:
		return nil, fmt.Errorf("unknown source %q (want %s or %s)", source, SourceLocal, SourceRemote)
	}
}
