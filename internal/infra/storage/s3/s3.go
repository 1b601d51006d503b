package s3

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
	// Базовый публичный URL бакета; если пуст — собирается из endpoint.
	PublicURL string
}

// Storage — зеркало сгенерированных картинок: ссылки вендора живут недолго,
// поэтому байты складываются в бакет, наружу отдаётся устойчивый URL.
type Storage struct {
	cl        *minio.Client
	logger    *log.Logger
	bucket    string
	publicURL string
}

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Storage, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, err
	}

	pub := cfg.PublicURL
	if pub == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		pub = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &Storage{cl: cl, logger: logger, bucket: cfg.Bucket, publicURL: strings.TrimSuffix(pub, "/")}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	_, err := s.cl.BucketExists(ctx, s.bucket)
	if err != nil {
		s.logger.Printf("bucket check failed: %v", err)
	}
	return err
}

// Put загружает поток и возвращает публичный URL объекта.
// Ключ контент-адресуемый ("images/sha256/<hex>"), повторная заливка
// того же содержимого безвредна.
func (s *Storage) Put(ctx context.Context, r io.Reader, hintName, mime string) (string, error) {
	h := sha256.New()
	pr, pw := io.Pipe()
	mw := io.MultiWriter(h, pw)

	// копируем в пайп и считаем sha параллельно
	go func() {
		_, copyErr := io.Copy(mw, r)
		pw.CloseWithError(copyErr)
	}()

	tmpKey := "tmp/" + sanitize(hintName)
	_, err := s.cl.PutObject(ctx, s.bucket, tmpKey, pr, -1, minio.PutObjectOptions{
		ContentType: mime,
	})
	if err != nil {
		return "", err
	}

	finalKey := fmt.Sprintf("images/sha256/%x", h.Sum(nil))
	if finalKey != tmpKey {
		src := minio.CopySrcOptions{Bucket: s.bucket, Object: tmpKey}
		dst := minio.CopyDestOptions{Bucket: s.bucket, Object: finalKey}
		if _, err := s.cl.CopyObject(ctx, dst, src); err != nil {
			_ = s.cl.RemoveObject(ctx, s.bucket, tmpKey, minio.RemoveObjectOptions{})
			return "", err
		}
		_ = s.cl.RemoveObject(ctx, s.bucket, tmpKey, minio.RemoveObjectOptions{})
	}

	u := s.publicURL + "/" + finalKey
	s.logger.Printf("stored %q -> %s", hintName, u)
	return u, nil
}

func (s *Storage) Delete(ctx context.Context, storageKey string) error {
	return s.cl.RemoveObject(ctx, s.bucket, storageKey, minio.RemoveObjectOptions{})
}

func sanitize(name string) string {
	u := url.PathEscape(name)
	return strings.ReplaceAll(u, "%2F", "_")
}
