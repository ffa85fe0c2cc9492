package climate

import (
	"database/sql"
	"net/http"

	"github.com/jonboulle/clockwork"

	"surfsup-server/internal/metrics"
	"surfsup-server/internal/modules/climate/controller"
	"surfsup-server/internal/modules/climate/repository"
	"surfsup-server/internal/modules/climate/service"
)

func RegisterFeature(mux *http.ServeMux, db *sql.DB, m *metrics.Metrics, clock clockwork.Clock) {
	climateRepository := repository.NewRepository(db)
	climateService := service.NewService(climateRepository, m, clock)
	climateController := controller.NewClimateController(climateService)
	climateController.RegisterRoutes(mux)
}
