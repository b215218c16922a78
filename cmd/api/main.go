package main

import (
	"context"
	"errors"
	"image"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"moodboard/internal/auth"
	"moodboard/internal/canvas"
	"moodboard/internal/cloudinary"
	"moodboard/internal/config"
	"moodboard/internal/emotion"
	"moodboard/internal/httpmiddleware"
	"moodboard/internal/session"
	"moodboard/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		if db == nil {
			return err
		}
		// Pool opened but the ping failed; keep serving so /healthz can
		// report the outage while the DB comes back.
		log.Printf("warning: db not reachable: %v", err)
	}
	defer db.Close()

	var sessions session.Store
	if cfg.SessionBackend == "memory" {
		sessions = session.NewMemory()
	} else {
		sessions = session.NewRedisStore(session.NewRedisClient(cfg.RedisAddr), cfg.SessionTTL)
	}

	// Cloudinary client (nil when not configured; submissions then fail cleanly)
	var blobs emotion.BlobStore
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		blobs = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("Cloudinary not configured (CLOUDINARY_CLOUD_NAME / API_KEY / API_SECRET not set)")
	}

	repo := emotion.NewRepository(db.Client)
	svc := emotion.NewService(repo, blobs)
	checkPassword := auth.NewPasswordChecker(cfg.TeacherPassword)

	r := gin.New()

	// Recovery middleware
	r.Use(gin.Recovery())

	// Custom logger
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	// CORS middleware
	r.Use(corsMiddleware())

	// Security headers
	r.Use(securityHeaders())

	// Rate limiting
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		sessionsHealthy := sessions.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !sessionsHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "sessions": sessionsHealthy, "db": dbHealthy})
	})

	v1 := r.Group("/v1", auth.SessionLoader(sessions, cfg.JWTSigningKey, cfg.JWTIssuer, cfg.SessionTTL))

	v1.GET("/emotions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"emotions": emotion.Options()})
	})

	v1.GET("/session", func(c *gin.Context) {
		c.JSON(http.StatusOK, auth.StateFromContext(c))
	})

	v1.PUT("/session/mode", func(c *gin.Context) {
		var req struct {
			Mode string `json:"mode" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		mode, err := session.ParseMode(req.Mode)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Switching to student mode drops teacher authentication; switching to
		// teacher mode keeps it.
		st := auth.StateFromContext(c).WithMode(mode)
		if err := sessions.Put(c.Request.Context(), auth.SessionFromContext(c), st); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session save failed"})
			return
		}
		c.JSON(http.StatusOK, st)
	})

	v1.POST("/teacher/login", func(c *gin.Context) {
		var req struct {
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !checkPassword(req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
			return
		}

		st := auth.StateFromContext(c).WithMode(session.ModeTeacher).WithAuthenticated(true)
		if err := sessions.Put(c.Request.Context(), auth.SessionFromContext(c), st); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session save failed"})
			return
		}
		c.JSON(http.StatusOK, st)
	})

	v1.POST("/teacher/logout", func(c *gin.Context) {
		st := auth.StateFromContext(c).WithAuthenticated(false)
		if err := sessions.Put(c.Request.Context(), auth.SessionFromContext(c), st); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session save failed"})
			return
		}
		c.JSON(http.StatusOK, st)
	})

	// Submission endpoint — accepts the drawing as a multipart file or as a
	// JSON base64 data URL, same as a canvas toDataURL() produces.
	v1.POST("/submissions", func(c *gin.Context) {
		var (
			name    string
			code    string
			drawing image.Image
		)

		contentType := c.ContentType()
		switch {
		case strings.Contains(contentType, "multipart/form-data"):
			name = c.PostForm("student_name")
			code = c.PostForm("emotion")
			file, _, ferr := c.Request.FormFile("drawing")
			if ferr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "drawing file field required"})
				return
			}
			defer file.Close()
			data, ferr := io.ReadAll(file)
			if ferr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "read drawing failed"})
				return
			}
			img, derr := canvas.Decode(data)
			if derr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": derr.Error()})
				return
			}
			drawing = img

		default:
			var body struct {
				StudentName string `json:"student_name"`
				Emotion     string `json:"emotion"`
				Drawing     string `json:"drawing" binding:"required"`
			}
			if berr := c.ShouldBindJSON(&body); berr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "provide {student_name, emotion, drawing}"})
				return
			}
			img, derr := canvas.DecodeDataURL(body.Drawing)
			if derr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": derr.Error()})
				return
			}
			name, code, drawing = body.StudentName, body.Emotion, img
		}

		rec, err := svc.Submit(c.Request.Context(), name, code, drawing)
		if err != nil {
			status := http.StatusBadGateway
			if errors.Is(err, emotion.ErrNameRequired) ||
				errors.Is(err, emotion.ErrDrawingEmpty) ||
				errors.Is(err, emotion.ErrUnknownEmotion) {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, rec)
	})

	v1.GET("/dashboard", auth.TeacherOnly(), func(c *gin.Context) {
		dash, err := svc.Dashboard(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, dash)
	})

	r.StaticFile("/", "web/index.html")
	r.Static("/static", "web/static")

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
