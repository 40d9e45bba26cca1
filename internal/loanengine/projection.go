package loanengine

// Defaults applied when a nested entity or field is missing. Downstream
// consumers never see an empty required field.
const (
	DefaultBookTitle  = "Unknown Book"
	DefaultBookAuthor = "Unknown Author"
	DefaultUserName   = "Unknown User"
	DefaultUserEmail  = "No Email"
	DefaultCoverPath  = "/img/book-cover-placeholder.png"
	DefaultAvatarPath = "/img/default-avatar.png"
)

// BookRecord is the engine's read-only view of the book a loan references.
type BookRecord struct {
	Title    string
	Author   string
	CoverURL string
	Stock    int
	Year     int
}

// UserRecord is the engine's read-only view of the borrower.
type UserRecord struct {
	Name            string
	Email           string
	ProfileImageURL string
}

// Projection is the display-ready view of one loan with its nested book
// and user, every optional field defaulted and every date pre-formatted.
type Projection struct {
	LoanID          string `json:"id"`
	CoverURL        string `json:"coverUrl"`
	BookTitle       string `json:"bookTitle"`
	BookAuthor      string `json:"bookAuthor"`
	BorrowerName    string `json:"borrowerName"`
	BorrowerEmail   string `json:"borrowerEmail"`
	AvatarURL       string `json:"avatarUrl"`
	Status          Status `json:"status"`
	LoanDuration    int    `json:"loanDuration"`
	RejectionReason string `json:"rejectionReason,omitempty"`
	RequestDate     string `json:"requestDate"`
	ApprovedDate    string `json:"approvedDate"`
	DueDate         string `json:"dueDate"`
	ReturnDate      string `json:"returnDate"`
	Verdict         string `json:"verdict,omitempty"`
}

// BuildProjection assembles the display record for a loan. book and user
// may be nil; their fields fall back to the documented defaults. The
// function is pure: it never fails and never mutates its inputs.
func BuildProjection(loan LoanRecord, book *BookRecord, user *UserRecord) Projection {
	p := Projection{
		LoanID:          loan.ID,
		CoverURL:        DefaultCoverPath,
		BookTitle:       DefaultBookTitle,
		BookAuthor:      DefaultBookAuthor,
		BorrowerName:    DefaultUserName,
		BorrowerEmail:   DefaultUserEmail,
		AvatarURL:       DefaultAvatarPath,
		Status:          loan.Status,
		LoanDuration:    loan.LoanDuration,
		RejectionReason: loan.RejectionReason,
		RequestDate:     FormatDate(loan.RequestDate),
		ApprovedDate:    FormatDate(loan.ApprovedDate),
		ReturnDate:      FormatDate(loan.ReturnDate),
	}

	if book != nil {
		if book.Title != "" {
			p.BookTitle = book.Title
		}
		if book.Author != "" {
			p.BookAuthor = book.Author
		}
		if book.CoverURL != "" {
			p.CoverURL = book.CoverURL
		}
	}
	if user != nil {
		if user.Name != "" {
			p.BorrowerName = user.Name
		}
		if user.Email != "" {
			p.BorrowerEmail = user.Email
		}
		if user.ProfileImageURL != "" {
			p.AvatarURL = user.ProfileImageURL
		}
	}

	due := EffectiveDueDate(loan)
	p.DueDate = FormatDate(due)
	p.Verdict = ClassifyReturn(loan.Status, due, loan.ReturnDate)
	return p
}
