// Package service реализует бизнес-логику магазина.
package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/vinayak-store/internal/cart"
	"github.com/mmeshcher/vinayak-store/internal/catalog"
	"github.com/mmeshcher/vinayak-store/internal/events"
	"github.com/mmeshcher/vinayak-store/internal/model"
	"github.com/mmeshcher/vinayak-store/internal/repository"
)

// ErrInvalidCredentials возвращается при неверной паре логин/пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	CreateUser(ctx context.Context, login string, passwordHash []byte) (int64, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	CreateOrder(ctx context.Context, o model.Order) (string, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error
}

// Uploader загружает изображения во внешний хостинг.
type Uploader interface {
	Upload(ctx context.Context, filename string, file io.Reader) (string, error)
}

// Metrics получает результаты оформления заказов.
type Metrics interface {
	ObserveCheckout(d time.Duration, err error)
	ObserveEventFailure()
}

type nopMetrics struct{}

func (nopMetrics) ObserveCheckout(time.Duration, error) {}
func (nopMetrics) ObserveEventFailure()                 {}

// Service содержит бизнес-логику магазина.
type Service struct {
	repo      Repository
	catalog   catalog.Source
	carts     *cart.Sessions
	publisher events.Publisher
	uploader  Uploader
	metrics   Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithPublisher подключает публикацию событий заказов.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithUploader подключает загрузку изображений.
func WithUploader(u Uploader) Option {
	return func(s *Service) { s.uploader = u }
}

// WithMetrics подключает метрики оформления.
func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock задаёт источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService создаёт новый сервис.
func NewService(repo Repository, cat catalog.Source, carts *cart.Sessions, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:      repo,
		catalog:   cat,
		carts:     carts,
		publisher: events.Nop{},
		metrics:   nopMetrics{},
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	var errs []error
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close())
	}
	if s.repo != nil {
		errs = append(errs, s.repo.Close())
	}
	return errors.Join(errs...)
}

// RegisterUser регистрирует нового пользователя.
func (s *Service) RegisterUser(ctx context.Context, login, password string) (model.Identity, error) {
	hashed := hashPassword(login, password)
	id, err := s.repo.CreateUser(ctx, login, hashed)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return model.Identity{}, repository.ErrUserExists
		}
		return model.Identity{}, err
	}
	return model.Identity{UserID: strconv.FormatInt(id, 10), Login: login, Role: model.RoleUser}, nil
}

// AuthenticateUser проверяет логин и пароль пользователя и возвращает его идентичность.
func (s *Service) AuthenticateUser(ctx context.Context, login, password string) (model.Identity, error) {
	u, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.Identity{}, ErrInvalidCredentials
		}
		return model.Identity{}, err
	}

	hashed := hashPassword(login, password)
	if subtle.ConstantTimeCompare(hashed, u.PasswordHash) != 1 {
		return model.Identity{}, ErrInvalidCredentials
	}

	return model.Identity{UserID: strconv.FormatInt(u.ID, 10), Login: u.Login, Role: u.Role}, nil
}

func hashPassword(login, password string) []byte {
	sum := sha256.Sum256([]byte(login + ":" + password))
	return sum[:]
}

// UploadAsset загружает изображение каталога и возвращает его адрес.
func (s *Service) UploadAsset(ctx context.Context, filename string, file io.Reader) (string, error) {
	if s.uploader == nil {
		return "", ErrUploadsDisabled
	}
	return s.uploader.Upload(ctx, filename, file)
}
