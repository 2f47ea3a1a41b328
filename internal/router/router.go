package router

import (
	"time"

	"github.com/FranexMT/GestorPlantaAgua/internal/config"
	"github.com/FranexMT/GestorPlantaAgua/internal/handler"
	"github.com/FranexMT/GestorPlantaAgua/internal/infra"
	"github.com/FranexMT/GestorPlantaAgua/internal/middleware"
	"github.com/FranexMT/GestorPlantaAgua/internal/repository"
	"github.com/FranexMT/GestorPlantaAgua/internal/service"
	"github.com/FranexMT/GestorPlantaAgua/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, movimientoStockRepo, dispatcher, cfg.UmbralStockInventario)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, movimientoStockRepo, dispatcher, cfg.UmbralStockVentas, cfg.PDFStoragePath)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	reportesH := handler.NewReportesHandler(ventaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Ventas — empleados y administradores operan la terminal
		v1.POST("/ventas", middleware.RequireRole("empleado", "administrador"), ventasH.Registrar)
		v1.GET("/ventas", middleware.RequireRole("empleado", "administrador"), ventasH.Listar)
		v1.GET("/ventas/:id", middleware.RequireRole("empleado", "administrador"), ventasH.ObtenerPorID)
		v1.GET("/ventas/:id/ticket", middleware.RequireRole("empleado", "administrador"), ventasH.Ticket)
		// Editar o eliminar una venta rehace el stock — solo administrador
		v1.PUT("/ventas/:id", middleware.RequireRole("administrador"), ventasH.Actualizar)
		v1.DELETE("/ventas/:id", middleware.RequireRole("administrador"), ventasH.Eliminar)

		// Productos — lectura para todos los autenticados, escritura solo admin
		v1.GET("/productos", middleware.RequireRole("empleado", "administrador"), productosH.Listar)
		v1.GET("/productos/:id", middleware.RequireRole("empleado", "administrador"), productosH.ObtenerPorID)
		prods := v1.Group("/productos", middleware.RequireRole("administrador"))
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
		}

		// Reportes — export del historial de ventas
		v1.GET("/reportes/ventas.xlsx", middleware.RequireRole("administrador"), reportesH.ExportarVentas)

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
