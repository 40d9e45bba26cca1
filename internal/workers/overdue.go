package workers

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"elibrary/internal/models"
	"elibrary/internal/repositories"
)

// OverdueNotifier files a reminder notification for every approved loan
// past its due date. It runs daily at midnight plus once at startup.
type OverdueNotifier struct {
	loanRepo  repositories.LoanRepository
	notifRepo repositories.NotificationRepository
	cron      *cron.Cron
}

func NewOverdueNotifier(loanRepo repositories.LoanRepository, notifRepo repositories.NotificationRepository) *OverdueNotifier {
	return &OverdueNotifier{
		loanRepo:  loanRepo,
		notifRepo: notifRepo,
		cron:      cron.New(),
	}
}

// Start schedules the sweep and kicks off an immediate run.
func (n *OverdueNotifier) Start() error {
	if _, err := n.cron.AddFunc("0 0 * * *", n.Sweep); err != nil {
		return err
	}
	n.cron.Start()
	go n.Sweep()
	return nil
}

// Stop halts the schedule; an in-flight sweep finishes on its own.
func (n *OverdueNotifier) Stop() {
	n.cron.Stop()
}

// Sweep scans overdue loans and writes one reminder each.
func (n *OverdueNotifier) Sweep() {
	now := time.Now().UTC()
	log.Printf("[INFO] overdue sweep: checking loans past due as of %s", now.Format("2006-01-02"))

	loans, err := n.loanRepo.ListOverdue(nil, now)
	if err != nil {
		log.Printf("[ERROR] overdue sweep: query failed: %v", err)
		return
	}

	for i := range loans {
		loan := &loans[i]
		daysLate := daysOverdue(*loan.DueDate, now)

		msg := fmt.Sprintf("PERINGATAN: Buku '%s' terlambat %d hari. Segera kembalikan!", loan.Book.Title, daysLate)
		notification := &models.Notification{UserID: loan.UserID, Message: msg}
		if err := n.notifRepo.Create(nil, notification); err != nil {
			log.Printf("[ERROR] overdue sweep: failed to notify user %s for loan %s: %v", loan.UserID, loan.ID, err)
			continue
		}
		log.Printf("[INFO] overdue sweep: loan %s is %d day(s) late, user %s notified", loan.ID, daysLate, loan.UserID)
	}
}

// daysOverdue counts whole days past due, minimum 1 once the due date has
// passed at all.
func daysOverdue(dueDate, now time.Time) int {
	days := int(now.Sub(dueDate).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return days
}
