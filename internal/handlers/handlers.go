package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"elibrary/internal/auth"
	"elibrary/internal/loanengine"
	"elibrary/internal/realtime"
	"elibrary/internal/services"
)

type APIHandler struct {
	authSvc    services.AuthService
	loanSvc    services.LoanService
	catalogSvc services.CatalogService
	uploadDir  string
}

// RegisterRoutes mounts the whole admin API. Everything except login sits
// behind the token middleware; mutating catalog and loan routes further
// require the librarian role.
func RegisterRoutes(
	r *gin.Engine,
	tokens *auth.Manager,
	authSvc services.AuthService,
	loanSvc services.LoanService,
	catalogSvc services.CatalogService,
	hub *realtime.Hub,
	uploadDir string,
) {
	h := &APIHandler{
		authSvc:    authSvc,
		loanSvc:    loanSvc,
		catalogSvc: catalogSvc,
		uploadDir:  uploadDir,
	}

	api := r.Group("/api")
	api.POST("/auth/login", h.login)

	authed := api.Group("", auth.Middleware(tokens))
	librarian := authed.Group("", auth.RequireRole(auth.RoleLibrarian))

	authed.GET("/books", h.listBooks)
	authed.GET("/books/:id", h.getBook)
	librarian.POST("/books", h.createBook)
	librarian.PUT("/books/:id", h.updateBook)
	librarian.DELETE("/books/:id", h.deleteBook)

	authed.POST("/users/register", h.registerUser)
	librarian.GET("/users", h.listUsers)
	authed.GET("/users/profile/:id", h.getUserProfile)
	authed.GET("/users/:id/notifications", h.listUserNotifications)

	librarian.GET("/loans", h.listLoans)
	authed.POST("/loans", h.createLoan)
	librarian.PUT("/loans/:id/approve", h.approveLoan)
	librarian.PUT("/loans/:id/reject", h.rejectLoan)
	librarian.PUT("/loans/:id/return", h.returnLoan)

	librarian.GET("/librarian/dashboard/stats", h.dashboardStats)
	librarian.GET("/librarian/profile/:id", h.getLibrarianProfile)
	librarian.PUT("/librarian/profile/:id", h.updateLibrarianProfile)

	if hub != nil {
		r.GET("/ws/loans/pending", auth.Middleware(tokens), hub.ServeWS)
	}
}

// respondError maps service and engine errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrLoanNotFound),
		errors.Is(err, services.ErrBookNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrLibrarianNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, loanengine.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, loanengine.ErrMissingRejectionReason),
		errors.Is(err, loanengine.ErrUnknownAction),
		errors.Is(err, services.ErrOutOfStock),
		errors.Is(err, services.ErrTooManyActiveLoans):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *APIHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, librarian, err := h.authSvc.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"librarian": librarian,
	})
}

// ─── Books ────────────────────────────────────────────────────────────────────

type bookJSONRequest struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author" binding:"required"`
	Year        int    `json:"year"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Pages       int    `json:"pages"`
	Stock       int    `json:"stock" binding:"min=0"`
}

func (h *APIHandler) listBooks(c *gin.Context) {
	books, err := h.catalogSvc.ListBooks()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": books})
}

func (h *APIHandler) getBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}
	book, err := h.catalogSvc.GetBook(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": book})
}

func (h *APIHandler) createBook(c *gin.Context) {
	input, err := h.bookInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	book, err := h.catalogSvc.CreateBook(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": book})
}

func (h *APIHandler) updateBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}
	input, err := h.bookInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	book, err := h.catalogSvc.UpdateBook(id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": book})
}

func (h *APIHandler) deleteBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}
	if err := h.catalogSvc.DeleteBook(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "book deleted"})
}

// bookInput reads the book fields from either a JSON body or a multipart
// form with an optional cover upload, matching the two shapes the admin
// screens send.
func (h *APIHandler) bookInput(c *gin.Context) (services.BookInput, error) {
	if !isMultipart(c) {
		var req bookJSONRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return services.BookInput{}, err
		}
		return services.BookInput{
			Title:       req.Title,
			Author:      req.Author,
			Year:        req.Year,
			Description: req.Description,
			Category:    req.Category,
			Pages:       req.Pages,
			Stock:       req.Stock,
		}, nil
	}

	input := services.BookInput{
		Title:       c.PostForm("title"),
		Author:      c.PostForm("author"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Year:        formInt(c, "year"),
		Pages:       formInt(c, "pages"),
		Stock:       formInt(c, "stock"),
	}
	if input.Title == "" || input.Author == "" {
		return services.BookInput{}, errors.New("title and author are required")
	}

	if file, err := c.FormFile("cover"); err == nil {
		url, err := h.saveUpload(c, file)
		if err != nil {
			return services.BookInput{}, err
		}
		input.CoverURL = url
	}
	return input, nil
}

// ─── Users ────────────────────────────────────────────────────────────────────

type registerUserRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	ProfileImageURL string `json:"profile_image_url"`
}

func (h *APIHandler) registerUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.catalogSvc.RegisterUser(req.Name, req.Email, req.ProfileImageURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": user})
}

func (h *APIHandler) listUsers(c *gin.Context) {
	users, err := h.catalogSvc.ListUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

func (h *APIHandler) getUserProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	user, err := h.catalogSvc.GetUser(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (h *APIHandler) listUserNotifications(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	notifications, err := h.catalogSvc.ListUserNotifications(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

// ─── Loans ────────────────────────────────────────────────────────────────────

func (h *APIHandler) listLoans(c *gin.Context) {
	status := loanengine.Status(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
		return
	}
	projections, err := h.loanSvc.ListLoans(status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": projections})
}

type createLoanRequest struct {
	UserID   string `json:"user_id" binding:"required,uuid"`
	BookID   string `json:"book_id" binding:"required,uuid"`
	Duration int    `json:"duration"`
}

func (h *APIHandler) createLoan(c *gin.Context) {
	var req createLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := uuid.Parse(req.UserID)
	bookID, _ := uuid.Parse(req.BookID)

	loan, err := h.loanSvc.RequestLoan(userID, bookID, req.Duration)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": loan})
}

func (h *APIHandler) approveLoan(c *gin.Context) {
	loanID, librarianID, ok := h.transitionIDs(c)
	if !ok {
		return
	}
	loan, err := h.loanSvc.ApproveLoan(loanID, librarianID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": loan})
}

type rejectLoanRequest struct {
	Reason string `json:"reason"`
}

func (h *APIHandler) rejectLoan(c *gin.Context) {
	loanID, librarianID, ok := h.transitionIDs(c)
	if !ok {
		return
	}
	var req rejectLoanRequest
	// Body is optional at the HTTP layer; the engine enforces the reason.
	_ = c.ShouldBindJSON(&req)

	loan, err := h.loanSvc.RejectLoan(loanID, librarianID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": loan})
}

func (h *APIHandler) returnLoan(c *gin.Context) {
	loanID, librarianID, ok := h.transitionIDs(c)
	if !ok {
		return
	}
	loan, err := h.loanSvc.ReturnLoan(loanID, librarianID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": loan})
}

// transitionIDs extracts the loan id from the path and the acting
// librarian from the verified token claims.
func (h *APIHandler) transitionIDs(c *gin.Context) (loanID, librarianID uuid.UUID, ok bool) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loan id"})
		return uuid.Nil, uuid.Nil, false
	}
	claims, found := auth.FromContext(c)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, uuid.Nil, false
	}
	librarianID, err = uuid.Parse(claims.LibrarianID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid librarian identity"})
		return uuid.Nil, uuid.Nil, false
	}
	return loanID, librarianID, true
}

// ─── Librarian ────────────────────────────────────────────────────────────────

func (h *APIHandler) dashboardStats(c *gin.Context) {
	stats, err := h.catalogSvc.DashboardStats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (h *APIHandler) getLibrarianProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid librarian id"})
		return
	}
	librarian, err := h.catalogSvc.GetLibrarian(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": librarian})
}

type librarianJSONRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Role    string `json:"role"`
}

func (h *APIHandler) updateLibrarianProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid librarian id"})
		return
	}

	var input services.LibrarianInput
	if isMultipart(c) {
		input = services.LibrarianInput{
			Name:    c.PostForm("name"),
			Email:   c.PostForm("email"),
			Phone:   c.PostForm("phone"),
			Address: c.PostForm("address"),
			Role:    c.PostForm("role"),
		}
		if file, err := c.FormFile("profileImage"); err == nil {
			url, err := h.saveUpload(c, file)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			input.ProfileImageURL = url
		}
	} else {
		var req librarianJSONRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		input = services.LibrarianInput{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Address: req.Address,
			Role:    req.Role,
		}
	}

	librarian, err := h.catalogSvc.UpdateLibrarian(id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": librarian})
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data")
}

func formInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.PostForm(key))
	return n
}

// saveUpload stores an uploaded file under the upload dir with a random
// name and returns the public path.
func (h *APIHandler) saveUpload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	name := uuid.NewString() + filepath.Ext(file.Filename)
	dst := filepath.Join(h.uploadDir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}
