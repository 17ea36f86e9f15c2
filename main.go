package main

import (
	"github.com/petpal-dev/petpal/config"
	"github.com/petpal-dev/petpal/models"
	"github.com/petpal-dev/petpal/routes"
	"github.com/petpal-dev/petpal/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Pet{},
		&models.Interaction{},
		&models.CheckIn{},
		&models.ShopItem{},
		&models.Purchase{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
