package handlers

import (
	"crosspost/database"
	"crosspost/services"

	"github.com/go-playground/validator/v10"
)

type Handler struct {
	db          *database.Database
	publisher   *services.PublisherService
	scheduler   *services.Scheduler
	authService *services.AuthService
	storage     *services.StorageService
	validate    *validator.Validate
}

func NewHandler(db *database.Database, publisher *services.PublisherService, scheduler *services.Scheduler,
	authService *services.AuthService, storage *services.StorageService) *Handler {
	return &Handler{
		db:          db,
		publisher:   publisher,
		scheduler:   scheduler,
		authService: authService,
		storage:     storage,
		validate:    validator.New(),
	}
}
