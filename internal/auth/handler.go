package auth

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/poschuler/remix-local-auth/internal/metrics"
	"github.com/poschuler/remix-local-auth/internal/session"
	"github.com/poschuler/remix-local-auth/internal/users"
)

// 一度だけ表示する通知
const (
	flashLoggedIn       = "You have been logged in"
	flashLoggedOut      = "You have been logged out"
	flashAccountCreated = "Account created successfully"
)

// フォームの _action の値
const (
	actionSignIn = "signIn"
	actionSignUp = "signUp"
	actionLogOut = "logOut"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates は画面テンプレートを読み込みます。
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// UserService はサインイン・サインアップを行うサービスです。
type UserService interface {
	SignIn(ctx context.Context, email, password string) (users.Result, error)
	SignUp(ctx context.Context, email, password string) (users.Result, error)
}

// Handler は認証まわりの画面とフォーム送信を処理します。
type Handler struct {
	users   UserService
	store   *session.Store
	guard   *Guard
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewHandler は Handler を作成します。
func NewHandler(svc UserService, store *session.Store, guard *Guard, m *metrics.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		users:   svc,
		store:   store,
		guard:   guard,
		metrics: m,
		logger:  logger,
	}
}

// page はテンプレートに渡す値です。
type page struct {
	Title         string
	Notifications []string
	Email         string
	Errors        FieldErrors
	User          *session.User
}

// Register はルーティングを登録します。
// ガードは画面表示（GET）にだけ掛け、フォーム送信はそれぞれの処理で扱います。
func (h *Handler) Register(router gin.IRouter) {
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, ProtectedPath)
	})

	router.GET(SignInPath, h.guard.LoggedOutOnly(), h.SignInPage)
	router.POST(SignInPath, h.SignIn)

	router.GET(SignUpPath, h.guard.LoggedOutOnly(), h.SignUpPage)
	router.POST(SignUpPath, h.SignUp)

	router.GET(ProtectedPath, h.guard.LoggedInOnly(), h.ProtectedPage)
	router.POST(ProtectedPath, h.LogOut)
}

// SignInPage は GET /sign-in のハンドラーです。
func (h *Handler) SignInPage(c *gin.Context) {
	h.render(c, http.StatusOK, "sign-in.html", page{Title: "Login"})
}

// SignIn は POST /sign-in のハンドラーです。
func (h *Handler) SignIn(c *gin.Context) {
	action, ok := h.action(c)
	if !ok {
		return
	}
	if action != actionSignIn {
		h.SignInPage(c)
		return
	}

	var form signInForm
	fields, err := bindForm(c, &form)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	if fields != nil {
		h.metrics.SignIn(metrics.ResultInvalid)
		h.render(c, http.StatusBadRequest, "sign-in.html", page{
			Title:  "Login",
			Email:  c.PostForm("email"),
			Errors: fields,
		})
		return
	}

	result, err := h.users.SignIn(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		h.metrics.SignIn(metrics.ResultError)
		h.serverError(c, "sign in failed", err)
		return
	}
	if !result.Success {
		h.metrics.SignIn(metrics.ResultRejected)
		h.render(c, result.Error.Code, "sign-in.html", page{
			Title:         "Login",
			Notifications: []string{result.Error.Message},
			Email:         form.Email,
		})
		return
	}

	// ハッシュはセッションに入れない
	projection := result.User.Projection()
	sess := h.store.ReadRequest(c.Request)
	sess.SetUser(session.User{ID: projection.ID, Email: projection.Email})
	cookie, err := h.store.Commit(sess)
	if err != nil {
		h.metrics.SignIn(metrics.ResultError)
		h.serverError(c, "commit session failed", err)
		return
	}

	h.metrics.SignIn(metrics.ResultSuccess)
	h.logger.Info("user signed in", "user_id", projection.ID)
	c.Writer.Header().Add("Set-Cookie", cookie)
	h.redirectWithFlash(c, ProtectedPath, flashLoggedIn)
}

// SignUpPage は GET /sign-up のハンドラーです。
func (h *Handler) SignUpPage(c *gin.Context) {
	h.render(c, http.StatusOK, "sign-up.html", page{Title: "Sign Up"})
}

// SignUp は POST /sign-up のハンドラーです。
func (h *Handler) SignUp(c *gin.Context) {
	action, ok := h.action(c)
	if !ok {
		return
	}
	if action != actionSignUp {
		h.SignUpPage(c)
		return
	}

	var form signUpForm
	fields, err := bindForm(c, &form)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	if fields != nil {
		h.metrics.SignUp(metrics.ResultInvalid)
		h.render(c, http.StatusBadRequest, "sign-up.html", page{
			Title:  "Sign Up",
			Email:  c.PostForm("email"),
			Errors: fields,
		})
		return
	}

	result, err := h.users.SignUp(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		h.metrics.SignUp(metrics.ResultError)
		h.serverError(c, "sign up failed", err)
		return
	}
	if !result.Success {
		h.metrics.SignUp(metrics.ResultRejected)
		h.render(c, result.Error.Code, "sign-up.html", page{
			Title:         "Sign Up",
			Notifications: []string{result.Error.Message},
			Email:         form.Email,
		})
		return
	}

	h.metrics.SignUp(metrics.ResultSuccess)
	h.logger.Info("user signed up", "user_id", result.User.ID)
	h.redirectWithFlash(c, SignInPath, flashAccountCreated)
}

// ProtectedPage は GET /protected のハンドラーです。
func (h *Handler) ProtectedPage(c *gin.Context) {
	h.render(c, http.StatusOK, "protected.html", page{
		Title: "Protected route",
		User:  UserFromContext(c),
	})
}

// LogOut は POST /protected のハンドラーです。
func (h *Handler) LogOut(c *gin.Context) {
	action, ok := h.action(c)
	if !ok {
		return
	}
	if action != actionLogOut {
		c.Status(http.StatusNoContent)
		return
	}

	sess := h.store.ReadRequest(c.Request)
	cookie, err := h.store.Destroy(sess)
	if err != nil {
		h.serverError(c, "destroy session failed", err)
		return
	}

	h.metrics.LogOut()
	c.Writer.Header().Add("Set-Cookie", cookie)
	h.redirectWithFlash(c, SignInPath, flashLoggedOut)
}

// NotFound は未定義のルートに対するハンドラーです。
func (h *Handler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "not-found.html", page{Title: "Not Found"})
}

// action は _action を読み取ります。無い場合は 400 を返して false になります。
func (h *Handler) action(c *gin.Context) (string, bool) {
	action, ok := c.GetPostForm("_action")
	if !ok {
		c.String(http.StatusBadRequest, "missing _action")
		return "", false
	}
	return action, true
}

func (h *Handler) render(c *gin.Context, status int, name string, p page) {
	flashes, err := session.Flashes(c)
	if err != nil {
		h.logger.Warn("read flash messages failed", "error", err)
	}
	p.Notifications = append(flashes, p.Notifications...)
	c.HTML(status, name, p)
}

func (h *Handler) redirectWithFlash(c *gin.Context, location, message string) {
	if err := session.AddFlash(c, message); err != nil {
		h.logger.Warn("save flash message failed", "error", err)
	}
	c.Redirect(http.StatusFound, location)
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.logger.Warn("malformed form submission", "path", c.Request.URL.Path, "error", err)
	c.String(http.StatusBadRequest, "malformed form submission")
}

func (h *Handler) serverError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, "path", c.Request.URL.Path, "error", err)
	c.HTML(http.StatusInternalServerError, "error.html", page{Title: "Error"})
}
