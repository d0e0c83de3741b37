package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andrefranchin/treine-me-api/internal/auth"
	"github.com/andrefranchin/treine-me-api/internal/cache"
	"github.com/andrefranchin/treine-me-api/internal/config"
	"github.com/andrefranchin/treine-me-api/internal/database"
	"github.com/andrefranchin/treine-me-api/internal/handlers"
	"github.com/andrefranchin/treine-me-api/internal/middleware"
	"github.com/andrefranchin/treine-me-api/internal/ownership"
	"github.com/andrefranchin/treine-me-api/internal/repository"
	"github.com/andrefranchin/treine-me-api/internal/services"
	"github.com/andrefranchin/treine-me-api/internal/storage"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	gin.SetMode(cfg.Server.GinMode)

	ctx := context.Background()

	pool, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	redisClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize Redis client: %v", err)
	}

	storageDriver, err := storage.New(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage driver: %v", err)
	}

	previousKeys := make([][]byte, 0, len(cfg.Auth.JWTPreviousSecrets))
	for _, s := range cfg.Auth.JWTPreviousSecrets {
		previousKeys = append(previousKeys, []byte(s))
	}
	codec, err := auth.NewTokenCodec(auth.CodecConfig{
		Issuer:       cfg.Auth.Issuer,
		Audience:     cfg.Auth.Audience,
		TTL:          time.Duration(cfg.Auth.TokenTTLDays) * 24 * time.Hour,
		Key:          []byte(cfg.Auth.JWTSecret),
		PreviousKeys: previousKeys,
	})
	if err != nil {
		log.Fatalf("Failed to initialize token codec: %v", err)
	}
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	// Repositories
	adminRepo := repository.NewAdminRepository(pool)
	professorRepo := repository.NewProfessorRepository(pool)
	alunoRepo := repository.NewAlunoRepository(pool)
	produtoRepo := repository.NewProdutoRepository(pool)
	moduloRepo := repository.NewModuloRepository(pool)
	aulaRepo := repository.NewAulaRepository(pool)
	conteudoRepo := repository.NewConteudoRepository(pool)
	planoRepo := repository.NewPlanoRepository(pool)
	inscricaoRepo := repository.NewInscricaoRepository(pool)

	filter := ownership.New(repository.NewOwnerDirectory(pool), redisClient)
	uploads := services.NewUploadService(conteudoRepo, storageDriver, redisClient)

	// Handlers
	authHandler := handlers.NewAuthHandler(adminRepo, professorRepo, alunoRepo, hasher, codec)
	produtoHandler := handlers.NewProdutoHandler(produtoRepo, uploads, filter)
	moduloHandler := handlers.NewModuloHandler(moduloRepo, filter)
	aulaHandler := handlers.NewAulaHandler(aulaRepo, filter)
	conteudoHandler := handlers.NewConteudoHandler(conteudoRepo, uploads, filter)
	planoHandler := handlers.NewPlanoHandler(planoRepo, filter)
	inscricaoHandler := handlers.NewInscricaoHandler(inscricaoRepo, planoRepo, alunoRepo)
	professorMeHandler := handlers.NewProfessorMeHandler(professorRepo, alunoRepo, uploads, hasher)
	alunoMeHandler := handlers.NewAlunoMeHandler(alunoRepo, produtoRepo, courseOutline{moduloRepo, aulaRepo}, uploads)
	adminHandler := handlers.NewAdminHandler(professorRepo, alunoRepo, hasher)

	router := setupRouter(cfg, codec,
		authHandler, produtoHandler, moduloHandler, aulaHandler, conteudoHandler,
		planoHandler, inscricaoHandler, professorMeHandler, alunoMeHandler, adminHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	pool.Close()
	redisClient.Close()

	log.Println("Server exited")
}

// courseOutline joins the modulo and aula repositories behind the single
// read surface the aluno handler wants.
type courseOutline struct {
	*repository.ModuloRepository
	*repository.AulaRepository
}

func setupRouter(
	cfg *config.Config,
	codec *auth.TokenCodec,
	authHandler *handlers.AuthHandler,
	produtoHandler *handlers.ProdutoHandler,
	moduloHandler *handlers.ModuloHandler,
	aulaHandler *handlers.AulaHandler,
	conteudoHandler *handlers.ConteudoHandler,
	planoHandler *handlers.PlanoHandler,
	inscricaoHandler *handlers.InscricaoHandler,
	professorMeHandler *handlers.ProfessorMeHandler,
	alunoMeHandler *handlers.AlunoMeHandler,
	adminHandler *handlers.AdminHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), middleware.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Storage.Driver == "local" {
		router.Static("/uploads", cfg.Storage.UploadsPath)
	}

	// Routes are a flat table rather than nested registration blocks so the
	// whole surface and its role requirements can be read in one place. An
	// empty role list means public.
	routes := []route{
		{http.MethodPost, "/auth/admin/login", nil, authHandler.AdminLogin},
		{http.MethodPost, "/auth/professores/login", nil, authHandler.ProfessorLogin},
		{http.MethodPost, "/auth/alunos/login", nil, authHandler.AlunoLogin},

		{http.MethodGet, "/professores/me", professorOnly, professorMeHandler.Get},
		{http.MethodPut, "/professores/me", professorOnly, professorMeHandler.Update},
		{http.MethodPost, "/professores/me/avatar", professorOnly, professorMeHandler.UploadAvatar},
		{http.MethodGet, "/professores/me/alunos", professorOnly, professorMeHandler.ListAlunos},
		{http.MethodPost, "/professores/me/alunos", professorOnly, professorMeHandler.CreateAluno},

		{http.MethodGet, "/professores/me/produtos", professorOnly, produtoHandler.List},
		{http.MethodPost, "/professores/me/produtos", professorOnly, produtoHandler.Create},
		{http.MethodGet, "/professores/me/produtos/:id", professorOnly, produtoHandler.Get},
		{http.MethodPut, "/professores/me/produtos/:id", professorOnly, produtoHandler.Update},
		{http.MethodDelete, "/professores/me/produtos/:id", professorOnly, produtoHandler.Delete},
		{http.MethodPost, "/professores/me/produtos/:id/cover", professorOnly, produtoHandler.UploadCover},

		{http.MethodGet, "/professores/me/produtos/:id/modulos", professorOnly, moduloHandler.List},
		{http.MethodPost, "/professores/me/produtos/:id/modulos", professorOnly, moduloHandler.Create},
		{http.MethodPut, "/professores/me/produtos/:id/modulos/reorder", professorOnly, moduloHandler.Reorder},
		{http.MethodPut, "/professores/me/produtos/:id/modulos/:moduloId", professorOnly, moduloHandler.Update},
		{http.MethodDelete, "/professores/me/produtos/:id/modulos/:moduloId", professorOnly, moduloHandler.Delete},

		{http.MethodGet, "/professores/me/produtos/:id/modulos/:moduloId/aulas", professorOnly, aulaHandler.List},
		{http.MethodPost, "/professores/me/produtos/:id/modulos/:moduloId/aulas", professorOnly, aulaHandler.Create},
		{http.MethodPut, "/professores/me/produtos/:id/modulos/:moduloId/aulas/reorder", professorOnly, aulaHandler.Reorder},
		{http.MethodPut, "/professores/me/produtos/:id/modulos/:moduloId/aulas/:aulaId", professorOnly, aulaHandler.Update},
		{http.MethodDelete, "/professores/me/produtos/:id/modulos/:moduloId/aulas/:aulaId", professorOnly, aulaHandler.Delete},

		{http.MethodGet, "/professores/me/produtos/:id/modulos/:moduloId/aulas/:aulaId/conteudos", professorOnly, conteudoHandler.List},
		{http.MethodPost, "/professores/me/produtos/:id/modulos/:moduloId/aulas/:aulaId/conteudos", professorOnly, conteudoHandler.Upload},
		{http.MethodDelete, "/professores/me/produtos/:id/modulos/:moduloId/aulas/:aulaId/conteudos/:conteudoId", professorOnly, conteudoHandler.Delete},

		{http.MethodGet, "/professores/me/planos", professorOnly, planoHandler.List},
		{http.MethodPost, "/professores/me/planos", professorOnly, planoHandler.Create},
		{http.MethodGet, "/professores/me/planos/:id", professorOnly, planoHandler.Get},
		{http.MethodPut, "/professores/me/planos/:id", professorOnly, planoHandler.Update},
		{http.MethodDelete, "/professores/me/planos/:id", professorOnly, planoHandler.Delete},

		{http.MethodGet, "/alunos/me", alunoOnly, alunoMeHandler.Get},
		{http.MethodPut, "/alunos/me", alunoOnly, alunoMeHandler.Update},
		{http.MethodPost, "/alunos/me/avatar", alunoOnly, alunoMeHandler.UploadAvatar},
		{http.MethodGet, "/alunos/me/produtos", alunoOnly, alunoMeHandler.ListProdutos},
		{http.MethodGet, "/alunos/me/produtos/:id", alunoOnly, alunoMeHandler.GetProduto},
		{http.MethodGet, "/alunos/me/inscricoes", alunoOnly, inscricaoHandler.List},
		{http.MethodPost, "/alunos/me/inscricoes", alunoOnly, inscricaoHandler.Create},
		{http.MethodGet, "/alunos/me/inscricoes/:id", alunoOnly, inscricaoHandler.Get},
		{http.MethodDelete, "/alunos/me/inscricoes/:id", alunoOnly, inscricaoHandler.Cancel},

		{http.MethodGet, "/admin/professores", adminOnly, adminHandler.ListProfessores},
		{http.MethodPost, "/admin/professores", adminOnly, adminHandler.CreateProfessor},
		{http.MethodGet, "/admin/professores/:id", adminOnly, adminHandler.GetProfessor},
		{http.MethodPut, "/admin/professores/:id", adminOnly, adminHandler.UpdateProfessor},
		{http.MethodDelete, "/admin/professores/:id", adminOnly, adminHandler.DeleteProfessor},
		{http.MethodGet, "/admin/alunos", adminOnly, adminHandler.ListAlunos},
	}

	api := router.Group("/api/v1")
	authenticate := middleware.Authenticate(codec)
	for _, r := range routes {
		if len(r.roles) == 0 {
			api.Handle(r.method, r.path, r.handler)
			continue
		}
		api.Handle(r.method, r.path, authenticate, middleware.RequireRoles(r.roles...), r.handler)
	}

	return router
}

type route struct {
	method  string
	path    string
	roles   []auth.Role
	handler gin.HandlerFunc
}

var (
	professorOnly = []auth.Role{auth.RoleProfessor}
	alunoOnly     = []auth.Role{auth.RoleAluno}
	adminOnly     = []auth.Role{auth.RoleAdmin}
)
