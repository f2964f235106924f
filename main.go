package main

import (
	"compress/flate"
	"compress/gzip"
	"html/template"
	"io"
	"net/http"
	"strings"

	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"camposocial/api"
	"camposocial/blob"
	"camposocial/chat"
	"camposocial/constants"
	"camposocial/content"
	docs "camposocial/doclib"
	"camposocial/events"
	"camposocial/feed"
	"camposocial/graph"
	"camposocial/market"
	"camposocial/notify"
	"camposocial/pay"
	"camposocial/state"
	"camposocial/types"
	"camposocial/uapi"
	"camposocial/users"

	routeChat "camposocial/routes/chat"
	routeEvents "camposocial/routes/events"
	routeFeed "camposocial/routes/feed"
	routeFriends "camposocial/routes/friends"
	routeMarketplace "camposocial/routes/marketplace"
	routeNotifications "camposocial/routes/notifications"
	routeUsers "camposocial/routes/users"
	routeYaps "camposocial/routes/yaps"

	"github.com/cloudflare/tableflip"

	"github.com/infinitybotlist/eureka/jsonimpl"
	"github.com/infinitybotlist/eureka/zapchi"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	_ "embed"
)

//go:embed data/docs.html
var docsHTML string

var openapi []byte

// Simple middleware to handle CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// limit body to 50mb for media uploads
		r.Body = http.MaxBytesReader(w, r.Body, 50*1024*1024)

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "Retry-After")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE")

		if r.Method == "OPTIONS" {
			w.Write([]byte{})
			return
		}

		w.Header().Set("Content-Type", "application/json")

		next.ServeHTTP(w, r)
	})
}

// Compression Middleware
type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (g *gzipResponseWriter) Write(b []byte) (int, error) {
	return g.Writer.Write(b)
}

func CompressionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check if the client supports compression
		encoding := r.Header.Get("Accept-Encoding")

		// Avoid compressing already compressed content
		contentType := w.Header().Get("Content-Type")
		if strings.Contains(contentType, "image") || strings.Contains(contentType, "video") || strings.Contains(contentType, "zip") {
			next.ServeHTTP(w, r)
			return
		}

		// Apply gzip compression
		if strings.Contains(encoding, "gzip") {
			gz := gzip.NewWriter(w)
			defer gz.Close()

			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Set("Vary", "Accept-Encoding")

			next.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, Writer: gz}, r)
			return
		}

		// Apply deflate compression
		if strings.Contains(encoding, "deflate") {
			fl, _ := flate.NewWriter(w, flate.DefaultCompression)
			defer fl.Close()

			w.Header().Set("Content-Encoding", "deflate")
			w.Header().Set("Vary", "Accept-Encoding")

			next.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, Writer: fl}, r)
			return
		}

		// If no compression is supported, proceed as usual
		next.ServeHTTP(w, r)
	})
}

// Ratelimit Middleware
type RateLimiterMiddleware struct {
	limiter *rate.Limiter
	paths   map[string]struct{}
	mu      sync.Mutex
}

func NewRateLimiterMiddleware(rateLimit rate.Limit, burst int, paths []string) *RateLimiterMiddleware {
	limitedPaths := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		limitedPaths[path] = struct{}{}
	}

	return &RateLimiterMiddleware{
		limiter: rate.NewLimiter(rateLimit, burst),
		paths:   limitedPaths,
	}
}

func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rl.mu.Lock()
		_, exists := rl.paths[r.URL.Path]
		allow := rl.limiter.Allow()
		rl.mu.Unlock()

		if exists && !allow {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	state.Setup()

	var err error

	docs.DocsSetupData = &docs.SetupData{
		URL:         "https://api.camposocial.app/",
		ErrorStruct: types.ApiError{},
		Info: docs.Info{
			Title:       "Campo Social",
			Version:     "1.0",
			Description: "The campus social network: friends, yaps, events, marketplace and messaging.",
			Contact: docs.Contact{
				Name:  "Campo Social",
				URL:   "https://camposocial.app",
				Email: "support@camposocial.app",
			},
			License: docs.License{
				Name: "AGPL-3.0",
				URL:  "https://opensource.org/licenses/AGPL-3.0",
			},
		},
	}

	docs.Setup()
	api.Setup()

	// Service wiring; stores get their handles here, not from globals.
	uploads := blob.New(state.Config.Blob)
	gateway := pay.New(state.Config.Payments)

	graphStore := graph.NewStore(state.Pool)
	feedCache := feed.NewCache(state.Redis)
	feedStore := feed.NewStore(state.Pool, feedCache)
	contentStore := content.NewStore(state.Pool, feedCache)
	notifyStore := notify.NewStore(state.Pool)
	chatStore := chat.NewStore(state.Pool, graphStore, chat.NewCache(state.Redis))
	marketStore := market.NewStore(state.Pool, gateway)
	eventStore := events.NewStore(state.Pool)
	userStore := users.NewStore(state.Pool, graphStore)

	r := chi.NewRouter()

	ratelimitedEndpoints := []string{"/users", "/login"}
	ratelimit := NewRateLimiterMiddleware(rate.Every(1), 3, ratelimitedEndpoints)

	r.Use(
		middleware.Recoverer,
		middleware.RealIP,
		middleware.CleanPath,
		middleware.Heartbeat("/ping"),
		middleware.Compress(5),
		middleware.Timeout(30*time.Second),
		corsMiddleware,
		CompressionMiddleware,
		ratelimit.Middleware,
		zapchi.Logger(state.Logger, "api"),
	)

	routers := []uapi.APIRouter{
		routeUsers.Router{Users: userStore, Uploads: uploads, Validator: state.Validator},
		routeFriends.Router{Graph: graphStore},
		routeYaps.Router{Content: contentStore, Uploads: uploads},
		routeFeed.Router{Feed: feedStore},
		routeNotifications.Router{Notify: notifyStore},
		routeChat.Router{Chat: chatStore, Uploads: uploads},
		routeMarketplace.Router{Market: marketStore, Uploads: uploads},
		routeEvents.Router{Events: eventStore, Uploads: uploads},
	}

	for _, router := range routers {
		name, desc := router.Tag()
		if name != "" {
			docs.AddTag(name, desc)
			uapi.State.SetCurrentTag(name)
		} else {
			panic("Router tag name cannot be empty")
		}

		router.Routes(r)
	}

	r.Get("/openapi", func(w http.ResponseWriter, r *http.Request) {
		w.Write(openapi)
	})

	docsTempl := template.Must(template.New("docs").Parse(docsHTML))

	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		docsTempl.Execute(w, map[string]string{
			"url": "/openapi",
		})
	})

	// Load openapi here to avoid large marshalling in every request
	openapi, err = jsonimpl.Marshal(docs.GetSchema())

	if err != nil {
		panic(err)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(constants.EndpointNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(constants.MethodNotAllowed))
	})

	// If GOOS is windows, do normal http server
	if runtime.GOOS == "linux" || runtime.GOOS == "darwin" {
		upg, _ := tableflip.New(tableflip.Options{})
		defer upg.Stop()

		go func() {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGHUP)
			for range sig {
				state.Logger.Info("Received SIGHUP, upgrading server")
				upg.Upgrade()
			}
		}()

		// Listen must be called before Ready
		ln, err := upg.Listen("tcp", state.Config.Server.Port)

		if err != nil {
			state.Logger.Fatal("Error binding to socket", zap.Error(err))
		}

		defer ln.Close()

		server := http.Server{
			ReadTimeout: 30 * time.Second,
			Handler:     r,
		}

		go func() {
			err := server.Serve(ln)
			if err != http.ErrServerClosed {
				state.Logger.Error("Server failed due to unexpected error", zap.Error(err))
			}
		}()

		if err := upg.Ready(); err != nil {
			state.Logger.Fatal("Error calling upg.Ready", zap.Error(err))
		}

		<-upg.Exit()
	} else {
		// Tableflip not supported
		state.Logger.Warn("Tableflip not supported on this platform, this is not a production-capable server.")
		err = http.ListenAndServe(state.Config.Server.Port, r)

		if err != nil {
			state.Logger.Fatal("Error binding to socket", zap.Error(err))
		}
	}
}
