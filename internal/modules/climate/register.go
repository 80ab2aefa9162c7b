package climate

import (
	"database/sql"
	"net/http"

	"surfsup-api/internal/config"
	"surfsup-api/internal/modules/climate/controller"
	"surfsup-api/internal/modules/climate/repository"
	"surfsup-api/internal/modules/climate/service"
)

func RegisterFeature(mux *http.ServeMux, db *sql.DB, cfg config.Config, opts ...service.Option) {
	climateRepository := repository.NewRepository(db)
	opts = append([]service.Option{service.WithWindowAnchor(cfg.WindowAnchor)}, opts...)
	climateService := service.NewService(climateRepository, opts...)
	climateController := controller.NewClimateController(climateService)
	climateController.RegisterRoutes(mux)
}
