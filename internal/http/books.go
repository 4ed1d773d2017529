package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type BooksController struct {
	store BookStore
}

func NewBooksController(store BookStore) *BooksController {
	return &BooksController{store: store}
}

type AddBookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Copies int    `json:"copies"`
}

// TitleRequest names a book by title for the title-based operations.
type TitleRequest struct {
	Title string `json:"title"`
}

// AddBook handles POST /api/books
func (bc *BooksController) AddBook(c *gin.Context) {
	var req AddBookRequest
	if !bindJSON(c, &req) {
		return
	}
	book, err := bc.store.AddBook(c.Request.Context(), req.Title, req.Author, req.Copies)
	if err != nil {
		respondAppError(c, err)
		return
	}
	listing, err := bc.store.GetBook(c.Request.Context(), book.ID)
	if err != nil {
		respondAppError(c, err)
		return
	}
	respondCreated(c, listing)
}

// ListBooks handles GET /api/books
func (bc *BooksController) ListBooks(c *gin.Context) {
	respondList(c, bc.store.ListBooks(c.Request.Context()))
}

// GetBook handles GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	listing, err := bc.store.GetBook(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// InventoryStatus handles GET /api/books/status
func (bc *BooksController) InventoryStatus(c *gin.Context) {
	status, err := bc.store.InventoryStatus(c.Request.Context())
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"books":            status.Books,
		"total_copies":     status.TotalCopies,
		"available_copies": status.AvailableCopies,
		"borrowed_copies":  status.BorrowedCopies(),
	})
}

// BorrowByTitle handles POST /api/books/borrow
func (bc *BooksController) BorrowByTitle(c *gin.Context) {
	var req TitleRequest
	if !bindJSON(c, &req) {
		return
	}
	listing, err := bc.store.BorrowBook(c.Request.Context(), req.Title)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// ReturnByTitle handles POST /api/books/return
func (bc *BooksController) ReturnByTitle(c *gin.Context) {
	var req TitleRequest
	if !bindJSON(c, &req) {
		return
	}
	listing, err := bc.store.ReturnBook(c.Request.Context(), req.Title)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// DeleteByTitle handles DELETE /api/books?title=...
func (bc *BooksController) DeleteByTitle(c *gin.Context) {
	id, err := bc.store.DeleteBook(c.Request.Context(), c.Query("title"))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "book deleted", Data: gin.H{"id": id}})
}

// Borrow handles POST /api/books/:id/borrow
func (bc *BooksController) Borrow(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	listing, err := bc.store.BorrowBookByID(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// Return handles POST /api/books/:id/return
func (bc *BooksController) Return(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	listing, err := bc.store.ReturnBookByID(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// Delete handles DELETE /api/books/:id
func (bc *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := bc.store.DeleteBookByID(c.Request.Context(), id); err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "book deleted", Data: gin.H{"id": id}})
}
