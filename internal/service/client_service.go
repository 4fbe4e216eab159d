package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/model"
	"github.com/smaraba1/payroll-processing/internal/repository"
)

var ErrClientNotFound = errors.New("Client not found")

// ClientService client companies
type ClientService interface {
	Create(ctx context.Context, req *dto.CreateClientRequest, callerID string) (*dto.ClientResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ClientResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateClientRequest, callerID string) (*dto.ClientResponse, error)
	Delete(ctx context.Context, id, callerID string) error
	List(ctx context.Context, req *dto.PaginationRequest) ([]dto.ClientResponse, int64, error)
	Search(ctx context.Context, name string) ([]dto.ClientResponse, error)
}

type clientService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClientService creates a ClientService.
func NewClientService(repo *repository.Repository, logger *zap.Logger) ClientService {
	return &clientService{repo: repo, logger: logger}
}

func (s *clientService) Create(ctx context.Context, req *dto.CreateClientRequest, callerID string) (*dto.ClientResponse, error) {
	client := &model.Client{
		Name:            strings.TrimSpace(req.Name),
		ContactPerson:   req.ContactPerson,
		ContactEmail:    req.ContactEmail,
		Address:         req.Address,
		SoftDeleteModel: model.SoftDeleteModel{BaseModel: model.CreatedBy(callerID)},
	}
	if err := s.repo.Client.Create(ctx, client); err != nil {
		s.logger.Error("create client failed", zap.Error(err))
		return nil, err
	}
	return toClientResponse(client), nil
}

func (s *clientService) get(ctx context.Context, id string) (*model.Client, error) {
	client, err := s.repo.Client.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		s.logger.Error("load client failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return client, nil
}

func (s *clientService) GetByID(ctx context.Context, id string) (*dto.ClientResponse, error) {
	client, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

func (s *clientService) Update(ctx context.Context, id string, req *dto.UpdateClientRequest, callerID string) (*dto.ClientResponse, error) {
	client, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		client.Name = strings.TrimSpace(*req.Name)
	}
	if req.ContactPerson != nil {
		client.ContactPerson = *req.ContactPerson
	}
	if req.ContactEmail != nil {
		client.ContactEmail = *req.ContactEmail
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	client.UpdatedBy = &callerID

	if err := s.repo.Client.Update(ctx, client); err != nil {
		s.logger.Error("update client failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toClientResponse(client), nil
}

func (s *clientService) Delete(ctx context.Context, id, callerID string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Client.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("delete client failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *clientService) List(ctx context.Context, req *dto.PaginationRequest) ([]dto.ClientResponse, int64, error) {
	clients, total, err := s.repo.Client.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list clients failed", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		result = append(result, *toClientResponse(&clients[i]))
	}
	return result, total, nil
}

// Search matches a case-insensitive substring of the name.
func (s *clientService) Search(ctx context.Context, name string) ([]dto.ClientResponse, error) {
	clients, err := s.repo.Client.SearchByName(ctx, strings.TrimSpace(name))
	if err != nil {
		s.logger.Error("search clients failed", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		result = append(result, *toClientResponse(&clients[i]))
	}
	return result, nil
}
