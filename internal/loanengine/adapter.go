package loanengine

import "encoding/json"

// Boundary adapter for raw backend documents. Field names have drifted
// across backend revisions (year vs publicationYear, stock vs
// availableStock, cover vs coverUrl, duration vs loanDuration, createdAt
// vs requestDate). All variants are resolved here, once, into the fixed
// internal schema; domain logic never branches on field spelling.

// RawBook is a book document as emitted by any backend revision.
type RawBook struct {
	ID       string
	Title    string
	Author   string
	CoverURL string
	Year     int
	Stock    int
}

func (b *RawBook) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID              string `json:"id"`
		Title           string `json:"title"`
		Author          string `json:"author"`
		CoverURL        string `json:"coverUrl"`
		Cover           string `json:"cover"`
		Year            *int   `json:"year"`
		PublicationYear *int   `json:"publicationYear"`
		Stock           *int   `json:"stock"`
		AvailableStock  *int   `json:"availableStock"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.ID = aux.ID
	b.Title = aux.Title
	b.Author = aux.Author
	b.CoverURL = firstNonEmpty(aux.CoverURL, aux.Cover)
	b.Year = firstNonNil(aux.Year, aux.PublicationYear)
	b.Stock = firstNonNil(aux.Stock, aux.AvailableStock)
	return nil
}

// Record converts the raw document to the engine's book view.
func (b *RawBook) Record() *BookRecord {
	if b == nil {
		return nil
	}
	return &BookRecord{
		Title:    b.Title,
		Author:   b.Author,
		CoverURL: b.CoverURL,
		Stock:    b.Stock,
		Year:     b.Year,
	}
}

// RawUser is a borrower document as emitted by any backend revision.
type RawUser struct {
	ID              string
	Name            string
	Email           string
	ProfileImageURL string
}

func (u *RawUser) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		Username        string `json:"username"`
		Email           string `json:"email"`
		ProfileImageURL string `json:"profileImageUrl"`
		ProfileImage    string `json:"profileImage"`
		PhotoURL        string `json:"photoURL"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	u.ID = aux.ID
	u.Name = firstNonEmpty(aux.Name, aux.Username)
	u.Email = aux.Email
	u.ProfileImageURL = firstNonEmpty(aux.ProfileImageURL, aux.ProfileImage, aux.PhotoURL)
	return nil
}

// Record converts the raw document to the engine's borrower view.
func (u *RawUser) Record() *UserRecord {
	if u == nil {
		return nil
	}
	return &UserRecord{
		Name:            u.Name,
		Email:           u.Email,
		ProfileImageURL: u.ProfileImageURL,
	}
}

// RawLoan is a loan document with optionally embedded book and user.
type RawLoan struct {
	ID              string
	Status          Status
	RequestDate     Timestamp
	ApprovedDate    Timestamp
	DueDate         Timestamp
	ReturnDate      Timestamp
	LoanDuration    int
	RejectionReason string
	Book            *RawBook
	User            *RawUser
}

func (l *RawLoan) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID              string    `json:"id"`
		Status          Status    `json:"status"`
		RequestDate     Timestamp `json:"requestDate"`
		CreatedAt       Timestamp `json:"createdAt"`
		ApprovedDate    Timestamp `json:"approvedDate"`
		DueDate         Timestamp `json:"dueDate"`
		ReturnDate      Timestamp `json:"returnDate"`
		LoanDuration    *int      `json:"loanDuration"`
		Duration        *int      `json:"duration"`
		RejectionReason string    `json:"rejectionReason"`
		Book            *RawBook  `json:"book"`
		User            *RawUser  `json:"user"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	l.ID = aux.ID
	l.Status = aux.Status
	l.RequestDate = aux.RequestDate
	if !l.RequestDate.Present() {
		l.RequestDate = aux.CreatedAt
	}
	l.ApprovedDate = aux.ApprovedDate
	l.DueDate = aux.DueDate
	l.ReturnDate = aux.ReturnDate
	l.LoanDuration = firstNonNil(aux.LoanDuration, aux.Duration)
	l.RejectionReason = aux.RejectionReason
	l.Book = aux.Book
	l.User = aux.User
	return nil
}

// Record converts the raw document to the engine's loan snapshot.
func (l *RawLoan) Record() LoanRecord {
	return LoanRecord{
		ID:              l.ID,
		Status:          l.Status,
		RequestDate:     l.RequestDate,
		ApprovedDate:    l.ApprovedDate,
		DueDate:         l.DueDate,
		ReturnDate:      l.ReturnDate,
		LoanDuration:    l.LoanDuration,
		RejectionReason: l.RejectionReason,
	}
}

// Projection builds the display record straight from a raw document.
func (l *RawLoan) Projection() Projection {
	return BuildProjection(l.Record(), l.Book.Record(), l.User.Record())
}

// DecodeLoan parses one raw loan document.
func DecodeLoan(data []byte) (RawLoan, error) {
	var loan RawLoan
	err := json.Unmarshal(data, &loan)
	return loan, err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonNil(values ...*int) int {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}
