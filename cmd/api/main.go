package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"go-leather-stock/config"
	"go-leather-stock/internal/handler"
	"go-leather-stock/internal/middleware"
	"go-leather-stock/internal/model"
	"go-leather-stock/internal/repository"
	"go-leather-stock/internal/service"
	"go-leather-stock/internal/ws"
	"go-leather-stock/pkg/database"
	"go-leather-stock/pkg/jwt"
	applog "go-leather-stock/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	envErr := godotenv.Load()
	cfg := config.LoadEnv()

	zlog, err := applog.New(cfg.Logger)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer zlog.Sync()
	if envErr != nil {
		zlog.Warn(".env file not found, using process environment")
	}

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.Postgres, cfg.Server.AppEnv, zlog)
	if err != nil {
		zlog.Fatal("connecting to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("migrating schema", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Seed default privileges, roles, and admin user
	seedPrivilegesRolesAndAdmin(ctx, db, cfg.Admin, zlog)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub(zlog)
	go wsHub.Run(ctx)

	// 5. Dependency Injection (Wiring Layers)
	itemRepo := repository.NewItemRepo(db)
	recordRepo := repository.NewInventoryRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	tokens := jwt.NewManager(cfg.JWT)

	observers := service.NewObservers(zlog,
		service.NewItemStatusRollup(db, itemRepo, recordRepo, cfg.Inventory.DefaultMinQuantity, zlog),
		service.NewHubNotifier(wsHub),
	)

	invService := service.NewInventoryService(db, recordRepo, txRepo, itemRepo, observers, cfg.Inventory, zlog)
	itemService := service.NewItemService(db, itemRepo, recordRepo, cfg.Inventory.DefaultMinQuantity, zlog)
	purchaseService := service.NewPurchaseService(db, purchaseRepo, itemRepo, recordRepo, txRepo, observers, cfg.Inventory, zlog)
	dashService := service.NewDashboardService(txRepo, recordRepo, zlog)
	authService := service.NewAuthService(userRepo, tokens, zlog)
	userService := service.NewUserService(userRepo, roleRepo, privilegeRepo, zlog)

	invHandler := handler.NewInventoryHandler(invService)
	itemHandler := handler.NewItemHandler(itemService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler(authService)
	roleHandler := handler.NewRoleHandler(roleRepo, privilegeRepo)
	userHandler := handler.NewUserHandler(userService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.Server.AppName,
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(tokens, userRepo))
	can := middleware.RequirePrivilege

	protected.Get("/dashboard/stats", can(model.PrivDashboardView), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", can(model.PrivDashboardView), dashHandler.GetStockMovement)
	protected.Get("/dashboard/alerts", can(model.PrivDashboardView), dashHandler.GetAlerts)

	protected.Get("/items", can(model.PrivStockView), itemHandler.GetItems)
	protected.Get("/items/:id", can(model.PrivStockView), itemHandler.GetItem)
	protected.Post("/items", can(model.PrivItemCreate), itemHandler.CreateItem)
	protected.Put("/items/:id", can(model.PrivItemUpdate), itemHandler.UpdateItem)

	protected.Get("/inventory", can(model.PrivStockView), invHandler.GetRecords)
	protected.Post("/inventory", can(model.PrivStockManage), invHandler.CreateRecord)
	protected.Get("/inventory/:id", can(model.PrivStockView), invHandler.GetRecord)
	protected.Get("/inventory/:id/transactions", can(model.PrivStockView), invHandler.GetTransactions)
	protected.Post("/inventory/:id/adjust", can(model.PrivStockAdjust), invHandler.Adjust)
	protected.Post("/inventory/:id/count", can(model.PrivStockCount), invHandler.Count)
	protected.Post("/inventory/:id/transfer", can(model.PrivStockTransfer), invHandler.Transfer)
	protected.Put("/inventory/:id/thresholds", can(model.PrivStockManage), invHandler.UpdateThresholds)
	protected.Post("/inventory/:id/deactivate", can(model.PrivStockManage), invHandler.Deactivate)
	protected.Delete("/inventory/:id", can(model.PrivStockManage), invHandler.Delete)

	protected.Get("/transactions", can(model.PrivStockView), invHandler.GetAllTransactions)
	protected.Get("/transactions/:id", can(model.PrivStockView), invHandler.GetTransaction)

	protected.Get("/purchases", can(model.PrivPurchaseView), purchaseHandler.GetPurchases)
	protected.Get("/purchases/:id", can(model.PrivPurchaseView), purchaseHandler.GetPurchase)
	protected.Post("/purchases", can(model.PrivPurchaseCreate), purchaseHandler.CreatePurchase)
	protected.Post("/purchases/:id/order", can(model.PrivPurchaseCreate), purchaseHandler.MarkOrdered)
	protected.Post("/purchases/:id/deliver", can(model.PrivPurchaseReceive), purchaseHandler.MarkDelivered)
	protected.Post("/purchases/:id/cancel", can(model.PrivPurchaseCreate), purchaseHandler.Cancel)

	protected.Get("/users", can(model.PrivUserView), userHandler.GetUsers)
	protected.Get("/users/:id", can(model.PrivUserView), userHandler.GetUser)
	protected.Post("/users", can(model.PrivUserManage), userHandler.CreateUser)
	protected.Put("/users/:id", can(model.PrivUserManage), userHandler.UpdateUser)
	protected.Put("/users/:id/privileges", can(model.PrivUserManage), userHandler.UpdateUserPrivileges)

	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", roleHandler.GetPrivileges)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !wsHub.Join(c) {
			return
		}
		defer wsHub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			zlog.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	zlog.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}
	zlog.Info("server exited")
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and the
// owner account if they don't exist.
func seedPrivilegesRolesAndAdmin(ctx context.Context, db *gorm.DB, admin config.AdminConfig, zlog *zap.Logger) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	userRepo := repository.NewUserRepo(db)

	if err := privilegeRepo.SeedDefaults(ctx); err != nil {
		zlog.Warn("failed to seed privileges", zap.Error(err))
	}
	if err := roleRepo.SeedDefaults(ctx); err != nil {
		zlog.Warn("failed to seed roles", zap.Error(err))
	}

	_, err := userRepo.FindByEmail(ctx, admin.Email)
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		zlog.Warn("failed to look up admin user", zap.Error(err))
		return
	}

	owner, err := roleRepo.FindByCode(ctx, model.RoleOwner)
	if err != nil {
		zlog.Warn("owner role missing, admin user not created", zap.Error(err))
		return
	}

	user := &model.User{
		Email:      admin.Email,
		FullName:   "Workshop Owner",
		RoleID:     &owner.ID,
		IsActive:   true,
		Privileges: owner.Privileges,
	}
	user.CreatedBy = "system"
	user.UpdatedBy = "system"

	if err := user.SetPassword(admin.Password); err != nil {
		zlog.Warn("failed to hash admin password", zap.Error(err))
		return
	}
	if err := userRepo.Create(ctx, user); err != nil {
		zlog.Warn("failed to create admin user", zap.Error(err))
		return
	}
	zlog.Info("admin user created", zap.String("email", admin.Email), zap.String("role", model.RoleOwner))
}
