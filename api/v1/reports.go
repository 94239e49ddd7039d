package v1

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/mahmoud206/vetratech-mobile-api/internal/config"
	"github.com/mahmoud206/vetratech-mobile-api/internal/reports"
	"github.com/mahmoud206/vetratech-mobile-api/internal/reports/export"
)

// ReportsAPI holds the reports API dependencies
type ReportsAPI struct {
	Handler   *reports.Handler
	Service   *reports.Service
	Connector reports.Connector
	Fonts     *export.FontRegistry
}

// SetupReportsAPI sets up the reports API with all dependencies
func SetupReportsAPI(client *mongo.Client, cfg *config.Config, logger *zap.Logger) (*ReportsAPI, error) {
	connector := reports.NewMongoConnector(client, cfg.Mongo.QueryTimeout, logger)
	return NewReportsAPI(connector, cfg, logger), nil
}

// NewReportsAPI builds the reports API on top of any connector
func NewReportsAPI(connector reports.Connector, cfg *config.Config, logger *zap.Logger) *ReportsAPI {
	fonts := export.NewFontRegistry(cfg.Reports.FontPath, logger)
	service := reports.NewService(connector, fonts, ServiceConfig(cfg), logger)
	handler := reports.NewHandler(service, logger)

	return &ReportsAPI{
		Handler:   handler,
		Service:   service,
		Connector: connector,
		Fonts:     fonts,
	}
}

// ServiceConfig maps application configuration onto the report service
func ServiceConfig(cfg *config.Config) reports.ServiceConfig {
	pdf := export.DefaultPDFOptions()
	pdf.Currency = cfg.Reports.Currency

	return reports.ServiceConfig{
		Datasets: cfg.Reports.Datasets,
		Engine: reports.EngineConfig{
			ExcludedContacts:   cfg.Reports.ExcludedContacts,
			LargeServiceMarker: cfg.Reports.LargeServiceMarker,
			TopProductsLimit:   cfg.Reports.TopProductsLimit,
		},
		PDF:   pdf,
		Excel: export.DefaultExcelOptions(),
		CSV:   export.DefaultCSVOptions(),
	}
}

// RegisterReportsRoutes registers the status routes on the root and the
// report routes on the versioned group
func RegisterReportsRoutes(root gin.IRoutes, group *gin.RouterGroup, api *ReportsAPI) {
	api.Handler.RegisterStatusRoutes(root)
	api.Handler.RegisterRoutes(group)
}
