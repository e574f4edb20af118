package handler

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/vinayak-store/internal/cart"
	"github.com/mmeshcher/vinayak-store/internal/customize"
	"github.com/mmeshcher/vinayak-store/internal/middleware"
	"github.com/mmeshcher/vinayak-store/internal/model"
	"github.com/mmeshcher/vinayak-store/internal/repository"
	"github.com/mmeshcher/vinayak-store/internal/service"
)

type stubService struct {
	registerWho model.Identity
	registerErr error

	authWho model.Identity
	authErr error

	products    []model.Product
	productsCat string
	productErr  error

	quoteResp customize.Quote
	quoteErr  error
	quoteKind model.Kind

	cartView   service.CartView
	notice     cart.Notification
	addErr     error
	lastDevice string

	placedWho model.Identity
	placeResp *model.Order
	placeErr  error

	ordersResp []model.Order
	ordersErr  error

	statusErr error
	link      string
	linkErr   error

	uploaded  string
	uploadURL string
	uploadErr error

	refreshed int
}

func (s *stubService) RegisterUser(ctx context.Context, login, password string) (model.Identity, error) {
	return s.registerWho, s.registerErr
}

func (s *stubService) AuthenticateUser(ctx context.Context, login, password string) (model.Identity, error) {
	return s.authWho, s.authErr
}

func (s *stubService) ListProducts(ctx context.Context, category string) ([]model.Product, error) {
	s.productsCat = category
	return s.products, s.productErr
}

func (s *stubService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	if s.productErr != nil {
		return nil, s.productErr
	}
	return &model.Product{ID: id}, nil
}

func (s *stubService) ListServices(ctx context.Context) ([]model.Service, error) {
	return nil, nil
}

func (s *stubService) GetService(ctx context.Context, id string) (*model.Service, error) {
	return &model.Service{ID: id}, nil
}

func (s *stubService) ListPackages(ctx context.Context) ([]model.Package, error) {
	return nil, nil
}

func (s *stubService) GetPackage(ctx context.Context, id string) (*model.Package, error) {
	return &model.Package{ID: id}, nil
}

func (s *stubService) Quote(ctx context.Context, kind model.Kind, id string, removed []int) (customize.Quote, error) {
	s.quoteKind = kind
	return s.quoteResp, s.quoteErr
}

func (s *stubService) RefreshCatalog() {
	s.refreshed++
}

func (s *stubService) Cart(deviceID string) service.CartView {
	s.lastDevice = deviceID
	return s.cartView
}

func (s *stubService) AddProduct(ctx context.Context, deviceID, productID string, quantity int) (cart.Notification, error) {
	return s.notice, s.addErr
}

func (s *stubService) AddPackage(ctx context.Context, deviceID, packageID string, removed []int, quantity int) (cart.Notification, error) {
	return s.notice, s.addErr
}

func (s *stubService) AddService(ctx context.Context, deviceID, serviceID string, removed []int, booking *model.BookingDetails) (cart.Notification, error) {
	return s.notice, s.addErr
}

func (s *stubService) UpdateQuantity(deviceID string, lineID model.LineID, quantity int) cart.Notification {
	return s.notice
}

func (s *stubService) RemoveLine(deviceID string, lineID model.LineID) cart.Notification {
	return s.notice
}

func (s *stubService) ClearCart(deviceID string) cart.Notification {
	return s.notice
}

func (s *stubService) PlaceOrder(ctx context.Context, deviceID string, who model.Identity, req service.CheckoutRequest) (*model.Order, error) {
	s.placedWho = who
	return s.placeResp, s.placeErr
}

func (s *stubService) OrdersByUser(ctx context.Context, who model.Identity) ([]model.Order, error) {
	return s.ordersResp, s.ordersErr
}

func (s *stubService) AllOrders(ctx context.Context) ([]model.Order, error) {
	return s.ordersResp, s.ordersErr
}

func (s *stubService) ServiceRequests(ctx context.Context) ([]model.Order, error) {
	return s.ordersResp, s.ordersErr
}

func (s *stubService) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	return s.statusErr
}

func (s *stubService) StatusMessageLink(ctx context.Context, id string) (string, error) {
	return s.link, s.linkErr
}

func (s *stubService) UploadAsset(ctx context.Context, filename string, file io.Reader) (string, error) {
	b, _ := io.ReadAll(file)
	s.uploaded = filename + ":" + string(b)
	return s.uploadURL, s.uploadErr
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	auth := middleware.NewAuthMiddleware("test-secret")

	return NewHandler(svc, logger, auth, nil)
}

func authCookie(t *testing.T, h *Handler, who model.Identity) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	h.authMiddleware.SetAuthCookie(rec, who)
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	return cookies[0]
}

func serve(h *Handler, req *http.Request) *http.Response {
	rec := httptest.NewRecorder()
	h.SetupRouter().ServeHTTP(rec, req)
	return rec.Result()
}

func TestRegister_Success(t *testing.T) {
	svc := &stubService{
		registerWho: model.Identity{UserID: "42", Login: "user", Role: model.RoleUser},
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(credentialsRequest{
		Login:    "user",
		Password: "pass",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if len(res.Cookies()) == 0 {
		t.Fatal("expected auth cookie")
	}
}

func TestRegister_Conflict(t *testing.T) {
	h := newTestHandler(t, &stubService{registerErr: repository.ErrUserExists})

	body, _ := json.Marshal(credentialsRequest{Login: "user", Password: "pass"})
	req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestLogin_Statuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid credentials", err: service.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{name: "internal", err: context.DeadlineExceeded, want: http.StatusInternalServerError},
		{name: "ok", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &stubService{
				authWho: model.Identity{UserID: "1", Login: "user", Role: model.RoleUser},
				authErr: tt.err,
			})

			body, _ := json.Marshal(credentialsRequest{Login: "user", Password: "pass"})
			req := httptest.NewRequest(http.MethodPost, "/api/user/login", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			h.Login(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestListProducts_Category(t *testing.T) {
	svc := &stubService{products: []model.Product{{ID: "camphor-100g", Category: "puja"}}}
	h := newTestHandler(t, svc)

	res := serve(h, httptest.NewRequest(http.MethodGet, "/api/catalog/products?category=puja", nil))
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if svc.productsCat != "puja" {
		t.Fatalf("category = %q, want puja", svc.productsCat)
	}

	var got []model.Product
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != "camphor-100g" {
		t.Fatalf("products = %+v", got)
	}
}

func TestListServices_EmptyArray(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	res := serve(h, httptest.NewRequest(http.MethodGet, "/api/catalog/services", nil))
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("body = %q, want []", body)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	h := newTestHandler(t, &stubService{productErr: repository.ErrNotFound})

	res := serve(h, httptest.NewRequest(http.MethodGet, "/api/catalog/products/missing", nil))
	defer res.Body.Close()

	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNotFound)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		err      error
		wantKind model.Kind
		want     int
	}{
		{name: "package", path: "/api/catalog/packages/ganesh-puja-kit/quote", wantKind: model.KindPackage, want: http.StatusOK},
		{name: "service", path: "/api/catalog/services/mandap-decoration/quote", wantKind: model.KindService, want: http.StatusOK},
		{name: "index out of range", path: "/api/catalog/packages/ganesh-puja-kit/quote", err: customize.ErrOptionOutOfRange, wantKind: model.KindPackage, want: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{quoteResp: customize.Quote{Price: 1100, OriginalPrice: 1200, Savings: 100}, quoteErr: tt.err}
			h := newTestHandler(t, svc)

			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(`{"removed":[1]}`))
			res := serve(h, req)
			defer res.Body.Close()

			if res.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", res.StatusCode, tt.want)
			}
			if svc.quoteKind != tt.wantKind {
				t.Fatalf("kind = %q, want %q", svc.quoteKind, tt.wantKind)
			}
		})
	}
}

func TestCart_IssuesDeviceCookie(t *testing.T) {
	svc := &stubService{cartView: service.CartView{Lines: []model.CartLine{}}}
	h := newTestHandler(t, svc)

	res := serve(h, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var device *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == "device_id" {
			device = c
		}
	}
	if device == nil {
		t.Fatal("expected device cookie")
	}
	if svc.lastDevice != device.Value {
		t.Fatalf("cart device = %q, cookie = %q", svc.lastDevice, device.Value)
	}
}

func TestAddToCart_Statuses(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		notice cart.Notification
		err    error
		want   int
	}{
		{
			name:   "product added",
			path:   "/api/cart/products",
			body:   `{"id":"camphor-100g","quantity":2}`,
			notice: cart.Notification{Outcome: cart.OutcomeAdded},
			want:   http.StatusCreated,
		},
		{
			name:   "product merged",
			path:   "/api/cart/products",
			body:   `{"id":"camphor-100g","quantity":1}`,
			notice: cart.Notification{Outcome: cart.OutcomeQuantityUpdated},
			want:   http.StatusOK,
		},
		{
			name:   "rejected line",
			path:   "/api/cart/packages",
			body:   `{"id":"ganesh-puja-kit","quantity":0}`,
			notice: cart.Notification{Outcome: cart.OutcomeRejected, Message: "quantity"},
			want:   http.StatusUnprocessableEntity,
		},
		{
			name: "out of stock",
			path: "/api/cart/products",
			body: `{"id":"sold-out","quantity":1}`,
			err:  service.ErrOutOfStock,
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "booking in past",
			path: "/api/cart/services",
			body: `{"id":"mandap-decoration","bookingDetails":{"date":"2020-01-01","time":"10:00","venue":"Hall"}}`,
			err:  customize.ErrBookingInPast,
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "unknown item",
			path: "/api/cart/services",
			body: `{"id":"missing"}`,
			err:  repository.ErrNotFound,
			want: http.StatusNotFound,
		},
		{
			name: "missing id",
			path: "/api/cart/products",
			body: `{"quantity":1}`,
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &stubService{notice: tt.notice, addErr: tt.err})

			res := serve(h, httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body)))
			defer res.Body.Close()

			if res.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", res.StatusCode, tt.want)
			}
		})
	}
}

func TestLineOperations(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		notice cart.Notification
		want   int
	}{
		{name: "set quantity", method: http.MethodPatch, path: "/api/cart/lines/l1", body: `{"quantity":3}`, notice: cart.Notification{Outcome: cart.OutcomeQuantitySet}, want: http.StatusOK},
		{name: "quantity below one", method: http.MethodPatch, path: "/api/cart/lines/l1", body: `{"quantity":0}`, notice: cart.Notification{Outcome: cart.OutcomeRejected}, want: http.StatusUnprocessableEntity},
		{name: "remove", method: http.MethodDelete, path: "/api/cart/lines/l1", notice: cart.Notification{Outcome: cart.OutcomeRemoved}, want: http.StatusOK},
		{name: "remove unknown", method: http.MethodDelete, path: "/api/cart/lines/nope", notice: cart.Notification{Outcome: cart.OutcomeUnchanged}, want: http.StatusOK},
		{name: "clear", method: http.MethodDelete, path: "/api/cart", notice: cart.Notification{Outcome: cart.OutcomeCleared}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &stubService{notice: tt.notice})

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			res := serve(h, httptest.NewRequest(tt.method, tt.path, body))
			defer res.Body.Close()

			if res.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", res.StatusCode, tt.want)
			}

			var got cartResponse
			if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Notice == nil || got.Notice.Outcome != tt.notice.Outcome {
				t.Fatalf("notice = %+v, want %q", got.Notice, tt.notice.Outcome)
			}
		})
	}
}

func TestCheckout(t *testing.T) {
	order := &model.Order{ID: "o-1", Total: 1200, Status: model.OrderStatusPending, CreatedAt: time.Now()}
	body := `{"shippingDetails":{"name":"Asha","phone":"9876543210","address":"MG Road","city":"Pune","zip":"411001"},"paymentMethod":"cod"}`

	tests := []struct {
		name string
		err  error
		who  *model.Identity
		want int
	}{
		{name: "guest", want: http.StatusCreated},
		{name: "user", who: &model.Identity{UserID: "7", Login: "asha@example.com", Role: model.RoleUser}, want: http.StatusCreated},
		{name: "invalid shipping", err: service.ErrInvalidShipping, want: http.StatusUnprocessableEntity},
		{name: "empty cart", err: cart.ErrEmptyCart, want: http.StatusBadRequest},
		{name: "in progress", err: cart.ErrCheckoutInProgress, want: http.StatusConflict},
		{name: "sink failed", err: service.ErrOrderNotPlaced, want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{placeResp: order, placeErr: tt.err}
			h := newTestHandler(t, svc)

			req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(body))
			if tt.who != nil {
				req.AddCookie(authCookie(t, h, *tt.who))
			}
			res := serve(h, req)
			defer res.Body.Close()

			if res.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", res.StatusCode, tt.want)
			}
			if tt.err != nil {
				return
			}

			wantWho := model.Guest()
			if tt.who != nil {
				wantWho = *tt.who
			}
			if svc.placedWho != wantWho {
				t.Fatalf("identity = %+v, want %+v", svc.placedWho, wantWho)
			}
		})
	}
}

func TestGetOrders(t *testing.T) {
	user := model.Identity{UserID: "1", Login: "user", Role: model.RoleUser}

	t.Run("guest unauthorized", func(t *testing.T) {
		h := newTestHandler(t, &stubService{})

		res := serve(h, httptest.NewRequest(http.MethodGet, "/api/user/orders", nil))
		defer res.Body.Close()

		if res.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnauthorized)
		}
	})

	t.Run("no content", func(t *testing.T) {
		h := newTestHandler(t, &stubService{ordersResp: []model.Order{}})

		req := httptest.NewRequest(http.MethodGet, "/api/user/orders", nil)
		req.AddCookie(authCookie(t, h, user))
		res := serve(h, req)
		defer res.Body.Close()

		if res.StatusCode != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNoContent)
		}
	})

	t.Run("json", func(t *testing.T) {
		h := newTestHandler(t, &stubService{ordersResp: []model.Order{{ID: "o-1"}}})

		req := httptest.NewRequest(http.MethodGet, "/api/user/orders", nil)
		req.AddCookie(authCookie(t, h, user))
		res := serve(h, req)
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
		}
		if ct := res.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("content-type = %q, want application/json", ct)
		}
	})
}

func TestAdminRoutes_Access(t *testing.T) {
	tests := []struct {
		name string
		who  *model.Identity
		want int
	}{
		{name: "guest", want: http.StatusUnauthorized},
		{name: "user", who: &model.Identity{UserID: "1", Login: "user", Role: model.RoleUser}, want: http.StatusForbidden},
		{name: "admin", who: &model.Identity{UserID: "2", Login: "admin", Role: model.RoleAdmin}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &stubService{ordersResp: []model.Order{{ID: "o-1"}}})

			req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
			if tt.who != nil {
				req.AddCookie(authCookie(t, h, *tt.who))
			}
			res := serve(h, req)
			defer res.Body.Close()

			if res.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", res.StatusCode, tt.want)
			}
		})
	}
}

func TestAdminUpdateStatus(t *testing.T) {
	admin := model.Identity{UserID: "2", Login: "admin", Role: model.RoleAdmin}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "ok", want: http.StatusOK},
		{name: "invalid", err: service.ErrInvalidStatus, want: http.StatusUnprocessableEntity},
		{name: "missing", err: repository.ErrOrderNotFound, want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &stubService{statusErr: tt.err})

			req := httptest.NewRequest(http.MethodPatch, "/api/admin/orders/o-1/status", strings.NewReader(`{"status":"shipped"}`))
			req.AddCookie(authCookie(t, h, admin))
			res := serve(h, req)
			defer res.Body.Close()

			if res.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", res.StatusCode, tt.want)
			}
		})
	}
}

func TestAdminStatusMessageLink(t *testing.T) {
	h := newTestHandler(t, &stubService{link: "https://wa.me/919876543210?text=hi"})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders/o-1/whatsapp", nil)
	req.AddCookie(authCookie(t, h, model.Identity{UserID: "2", Login: "admin", Role: model.RoleAdmin}))
	res := serve(h, req)
	defer res.Body.Close()

	var got linkResponse
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.URL != "https://wa.me/919876543210?text=hi" {
		t.Fatalf("url = %q", got.URL)
	}
}

func TestAdminUploadAsset(t *testing.T) {
	admin := model.Identity{UserID: "2", Login: "admin", Role: model.RoleAdmin}

	newUpload := func(t *testing.T) *http.Request {
		t.Helper()

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "garland.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = fw.Write([]byte("png"))
		_ = mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/admin/assets", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}

	t.Run("uploaded", func(t *testing.T) {
		svc := &stubService{uploadURL: "https://cdn.example.com/garland.png"}
		h := newTestHandler(t, svc)

		req := newUpload(t)
		req.AddCookie(authCookie(t, h, admin))
		res := serve(h, req)
		defer res.Body.Close()

		if res.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusCreated)
		}
		if svc.uploaded != "garland.png:png" {
			t.Fatalf("uploaded = %q", svc.uploaded)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		h := newTestHandler(t, &stubService{uploadErr: service.ErrUploadsDisabled})

		req := newUpload(t)
		req.AddCookie(authCookie(t, h, admin))
		res := serve(h, req)
		defer res.Body.Close()

		if res.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusServiceUnavailable)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		h := newTestHandler(t, &stubService{})

		req := httptest.NewRequest(http.MethodPost, "/api/admin/assets", strings.NewReader("x"))
		req.AddCookie(authCookie(t, h, admin))
		res := serve(h, req)
		defer res.Body.Close()

		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
		}
	})
}

func TestMetricsRoute(t *testing.T) {
	logger := zap.NewNop()
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	h := NewHandler(&stubService{}, logger, middleware.NewAuthMiddleware("s"), metrics)

	res := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	res = serve(newTestHandler(t, &stubService{}), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	defer res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status without registry = %d, want %d", res.StatusCode, http.StatusNotFound)
	}
}

func TestCart_GzipResponse(t *testing.T) {
	svc := &stubService{cartView: service.CartView{
		Lines: []model.CartLine{{ID: "l1", CatalogID: "camphor-100g", Kind: model.KindProduct, UnitPrice: 120, Quantity: 2}},
		Total: 240,
		Count: 2,
	}}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	res := serve(h, req)
	defer res.Body.Close()

	if ce := res.Header.Get("Content-Encoding"); ce != "gzip" {
		t.Fatalf("content-encoding = %q, want gzip", ce)
	}

	zr, err := gzip.NewReader(res.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	defer zr.Close()

	var got cartResponse
	if err := json.NewDecoder(zr).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 240 || got.Count != 2 {
		t.Fatalf("cart = %+v", got.CartView)
	}
}

func TestAdminRefreshCatalog(t *testing.T) {
	svc := &stubService{}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/catalog/refresh", nil)
	req.AddCookie(authCookie(t, h, model.Identity{UserID: "2", Login: "admin", Role: model.RoleAdmin}))
	res := serve(h, req)
	defer res.Body.Close()

	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNoContent)
	}
	if svc.refreshed != 1 {
		t.Fatalf("refreshed = %d, want 1", svc.refreshed)
	}
}
