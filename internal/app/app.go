package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nutri-go/internal/config"
	"nutri-go/internal/delivery"
	"nutri-go/internal/encryption"
	"nutri-go/internal/model"
	"nutri-go/internal/nutri"
	"nutri-go/internal/remote"
	"nutri-go/internal/store"
)

// ShutdownTimeout bounds how long Close waits for background reconciliation
// and pending deliveries.
const ShutdownTimeout = 10 * time.Second

// App is the application layer between the CLI and nutri.Service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw CLI values, and drains background work on Close.
type App struct {
	cfg      *config.Config
	store    *store.Store
	fallback delivery.OpaqueTransport
	queue    *delivery.Queue
	service  *nutri.Service
	op       *Operation
	clock    nutri.Clock
	logger   *slog.Logger
	logFile  *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Analyze", "Sync").
// When records are encrypted the key passphrase is read through
// ReadPassphrase. The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, operation string) (*App, error) {
	return newApp(ctx, cfg, operation, os.Stderr)
}

func newApp(ctx context.Context, cfg *config.Config, operation string, stderr io.Writer) (*App, error) {
	clock := nutri.RealClock{}
	op := NewOperation(operation, clock)

	logger, logFile, err := newLogger(cfg.LogDir, op.ID, stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := &slogAdapter{l: logger}

	enc, opener, err := unlockEncryption(cfg.Encryption)
	if err != nil {
		logFile.Close()
		return nil, err
	}

	st, err := store.NewStoreFromConfig(ctx, cfg.Store, enc, opener, clock, log)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating store: %w", err)
	}

	httpClient := remote.NewHTTPClient(cfg.Endpoints.Timeout.Duration)

	fallback, err := delivery.NewFallbackFromConfig(cfg.Delivery, httpClient)
	if err != nil {
		st.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating delivery fallback: %w", err)
	}
	queue := delivery.NewQueue(
		delivery.NewChannel(httpClient, fallback, log),
		cfg.Endpoints.Sync,
		cfg.Delivery.QueueSize,
		log,
	)

	analyzer := remote.NewGeminiClient(remote.GeminiOptions{
		APIKey:  os.Getenv(cfg.Inference.APIKeyEnv),
		BaseURL: cfg.Inference.BaseURL,
		Model:   cfg.Inference.Model,
		Logger:  log,
	})

	notifier := nutri.NewNotifier(clock)
	notifier.Subscribe(func(n model.Notification) {
		logger.Info("notification", "kind", n.Kind, "message", n.Message)
	})

	svc := nutri.NewService(
		st,
		remote.NewStatusClient(cfg.Endpoints.Status, httpClient),
		analyzer,
		remote.NewCheckoutClient(cfg.Endpoints.Checkout, httpClient),
		queue,
		notifier,
		log,
		clock,
		nutri.UUIDGenerator{},
		cfg.History.MaxEntries,
		nutri.Options{
			CallbackURL: cfg.Endpoints.CallbackURL,
			Source:      cfg.Delivery.Source,
			Profile: model.UserRecord{
				Name:      cfg.Profile.Name,
				Email:     cfg.Profile.Email,
				AvatarURL: cfg.Profile.AvatarURL,
			},
		},
	)

	logger.Info("operation started", "operation", op.Name, "store", cfg.Store.Type)

	return &App{
		cfg:      cfg,
		store:    st,
		fallback: fallback,
		queue:    queue,
		service:  svc,
		op:       op,
		clock:    clock,
		logger:   logger,
		logFile:  logFile,
	}, nil
}

// unlockEncryption returns the encryptor for cfg and an opener for reading
// sealed records, or nils when encryption is disabled.
func unlockEncryption(cfg config.EncryptionConfig) (nutri.Encryptor, nutri.RecordOpener, error) {
	enc, err := encryption.NewEncryptorFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating encryptor: %w", err)
	}
	if enc == nil {
		return nil, nil, nil
	}
	if !enc.IsConfigured() {
		return nil, nil, fmt.Errorf("encryption keys not found: run 'nutri config keys init'")
	}

	passphrase, err := ReadPassphrase("Passphrase: ")
	if err != nil {
		return nil, nil, err
	}
	opener, err := enc.Unlock(passphrase)
	if err != nil {
		return nil, nil, fmt.Errorf("unlocking encryption keys: %w", err)
	}
	return enc, opener, nil
}

// InitKeys generates the at-rest encryption key pair for cfg.
func InitKeys(cfg config.EncryptionConfig, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if enc == nil {
		return fmt.Errorf("encryption is disabled: set [encryption] type = \"age\" first")
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up encryption keys: %w", err)
	}
	return nil
}

// OnNotify registers fn to receive every notification posted while the
// App is running.
func (a *App) OnNotify(fn func(model.Notification)) {
	a.service.Notifier().Subscribe(fn)
}

// Bootstrap restores the persisted session. returnURL is the URL the payment
// page redirected to, or empty. The scrubbed URL is returned so the caller
// can show where the user landed.
func (a *App) Bootstrap(ctx context.Context, returnURL string) (string, error) {
	if returnURL == "" {
		return "", a.op.Record(a.service.Bootstrap(ctx, nutri.NoSignal{}))
	}

	loc, err := nutri.ParseLocation(returnURL)
	if err != nil {
		return "", a.op.Record(err)
	}
	if err := a.service.Bootstrap(ctx, loc); err != nil {
		return "", a.op.Record(err)
	}
	return loc.String(), nil
}

// PaymentReturnURL builds the URL the checkout page sends the user back to
// after a payment with the given status.
func (a *App) PaymentReturnURL(status string) string {
	base := a.cfg.Endpoints.CallbackURL
	if base == "" {
		base = "nutri://app/"
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "payment=" + status
}

// Login signs a user in, reusing the device identity when one exists.
func (a *App) Login(ctx context.Context, email, name string) (model.UserRecord, error) {
	user, err := a.service.Login(ctx, email, name)
	return user, a.op.Record(err)
}

// Logout clears the signed-in user and history.
func (a *App) Logout() error {
	return a.op.Record(a.service.Logout())
}

// Status returns the signed-in user's plan and quota summary.
func (a *App) Status() (*nutri.Summary, error) {
	summary, err := a.service.Status()
	return summary, a.op.Record(err)
}

// Analyze runs one analysis. imagePath, when set, names an image file that
// is sent inline as a base64 data URL.
func (a *App) Analyze(ctx context.Context, text, imagePath string) (*model.HistoryEntry, error) {
	in := nutri.Input{Text: text}
	if imagePath != "" {
		image, err := imageDataURL(imagePath)
		if err != nil {
			return nil, a.op.Record(err)
		}
		in.Image = image
	}

	entry, err := a.service.Analyze(ctx, in)
	if errors.Is(err, nutri.ErrQuotaExceeded) {
		return nil, err
	}
	return entry, a.op.Record(err)
}

// History returns up to limit history entries, newest first. A limit of
// zero or less returns all of them.
func (a *App) History(limit int) []model.HistoryEntry {
	history := a.service.History()
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history
}

// Sync reconciles the plan with the status endpoint and waits for the result.
func (a *App) Sync(ctx context.Context) (model.Plan, error) {
	plan, err := a.service.Sync(ctx)
	return plan, a.op.Record(err)
}

// Watch reconciles every interval until ctx is done.
func (a *App) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return a.op.Record(fmt.Errorf("watch interval must be positive"))
	}
	err := a.service.Reconciler().Run(ctx, interval)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return a.op.Record(err)
}

// Upgrade starts a checkout and returns the payment URL.
func (a *App) Upgrade(ctx context.Context) (string, error) {
	checkoutURL, err := a.service.Upgrade(ctx)
	return checkoutURL, a.op.Record(err)
}

// Close waits for background reconciliation, drains pending deliveries and
// releases the store and log file. Work still running after
// ShutdownTimeout is abandoned.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	var errs []error

	if err := a.service.Wait(ctx); err != nil {
		a.logger.Info("background reconciliation abandoned", "error", err)
	}
	if err := a.queue.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("draining delivery queue: %w", err))
	}
	if a.fallback != nil {
		a.fallback.Close()
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing store: %w", err))
	}

	a.logger.Info("operation finished",
		"operation", a.op.Name,
		"status", a.op.Status,
		"elapsed", a.op.Elapsed(a.clock).Round(time.Millisecond),
	)
	if a.logFile != nil {
		a.logFile.Close()
	}

	return errors.Join(errs...)
}

// imageDataURL reads an image file and encodes it as a data URL.
func imageDataURL(rawPath string) (string, error) {
	p, err := filepath.Abs(rawPath)
	if err != nil {
		return "", fmt.Errorf("resolving image path: %w", err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image file %s is empty", p)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", p, mimeType)
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
