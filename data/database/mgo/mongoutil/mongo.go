package mongoutil

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/anandbobba/Innovex-Service/logger"
	"github.com/anandbobba/Innovex-Service/tools/errs"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMaxPoolSize = 20
	defaultMaxRetry    = 5
	connectTimeout     = 10 * time.Second
)

// Config represents the MongoDB configuration.
type Config struct {
	Uri         string
	Database    string
	MaxPoolSize int
	MaxRetry    int

	// InsecureTLSFallback allows one extra connect attempt with certificate
	// verification disabled after a TLS handshake failure. Development only.
	InsecureTLSFallback bool
}

// ValidateAndSetDefaults validates the configuration and sets default values.
func (c *Config) ValidateAndSetDefaults() error {
	if c.Uri == "" {
		return errs.New("mongo uri is required")
	}
	if _, err := url.Parse(c.Uri); err != nil {
		return errs.WrapMsg(err, "malformed mongo uri")
	}
	if c.Database == "" {
		return errs.New("database is required")
	}
	if c.MaxPoolSize <= 0 {
		c.MaxPoolSize = defaultMaxPoolSize
	}
	if c.MaxRetry <= 0 {
		c.MaxRetry = defaultMaxRetry
	}
	return nil
}

// SanitizeURI strips credentials from a connection string for logging.
func SanitizeURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "<unparseable>"
	}
	if u.User != nil {
		u.User = url.User("***")
	}
	return u.String()
}

func applyConfigToOptions(cfg *Config) *options.ClientOptions {
	opts := options.Client().ApplyURI(cfg.Uri)
	opts.SetMaxPoolSize(uint64(cfg.MaxPoolSize))
	opts.SetConnectTimeout(connectTimeout)
	opts.SetServerSelectionTimeout(connectTimeout)
	return opts
}

type Client struct {
	db *mongo.Database
}

func (c *Client) GetDB() *mongo.Database {
	return c.db
}

// NewMongoDB initializes a new MongoDB connection with retry and backoff.
func NewMongoDB(ctx context.Context, cfg *Config) (*Client, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	opts := applyConfigToOptions(cfg)

	var (
		cli *mongo.Client
		err error
	)
	backoff := 500 * time.Millisecond
	for i := 0; i < cfg.MaxRetry; i++ {
		cli, err = connectMongo(ctx, opts)
		if err == nil {
			break
		}
		if isTLSHandshakeErr(err) && cfg.InsecureTLSFallback {
			logger.Warn("mongo TLS handshake failed, retrying with certificate verification disabled (dev only)")
			opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: true})
			cli, err = connectMongo(ctx, opts)
			if err == nil {
				break
			}
		}
		logger.Errorf("mongo connect attempt %d/%d failed: %v (uri=%s)",
			i+1, cfg.MaxRetry, err, SanitizeURI(cfg.Uri))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if err != nil {
		return nil, errs.WrapMsg(err, "failed to connect to MongoDB after %d attempts", cfg.MaxRetry)
	}

	return &Client{db: cli.Database(cfg.Database)}, nil
}

func connectMongo(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, err
	}
	return cli, nil
}

func isTLSHandshakeErr(err error) bool {
	var recordErr tls.RecordHeaderError
	var certErr x509.UnknownAuthorityError
	if errors.As(err, &recordErr) || errors.As(err, &certErr) {
		return true
	}
	msg := strings.ToLower(fmt.Sprint(err))
	return strings.Contains(msg, "tls") || strings.Contains(msg, "x509") || strings.Contains(msg, "certificate")
}
