package notifier

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"mobirent/internal/pkg/errs"
	"mobirent/internal/usecase/commands"
)

var voucherTmpl = template.Must(template.New("voucher").Parse(`
<h1>Your Mobirent reservation is confirmed!</h1>
<p>Dear <strong>{{.UserName}}</strong>,</p>
<p>Your payment went through and your reservation is confirmed.</p>
<p><strong>Reservation details:</strong></p>
<ul>
    <li><strong>Reservation number:</strong> {{.Number}}</li>
    <li><strong>Vehicle:</strong> {{.VehicleLabel}}</li>
    <li><strong>Pickup date:</strong> {{.StartDate}}</li>
    <li><strong>Return date:</strong> {{.EndDate}}</li>
    <li><strong>Pickup branch:</strong> {{.PickupBranch}}</li>
    <li><strong>Return branch:</strong> {{.ReturnBranch}}</li>
    <li><strong>Total paid:</strong> {{.Total}}</li>
</ul>
<p>You can review your reservation any time from your Mobirent account.</p>
<p>Thank you for choosing Mobirent. Enjoy the ride!</p>
<p>Regards,<br/>The Mobirent team</p>
`))

var cancellationTmpl = template.Must(template.New("cancellation").Parse(`
<h1>Reservation cancellation confirmed - Mobirent</h1>
<p>Dear <strong>{{.UserName}}</strong>,</p>
<p>Your reservation <strong>#{{.Number}}</strong> for {{.VehicleLabel}} has been cancelled.</p>
<p><strong>Cancelled reservation details:</strong></p>
<ul>
    <li><strong>Reservation number:</strong> {{.Number}}</li>
    <li><strong>Vehicle:</strong> {{.VehicleLabel}}</li>
    <li><strong>Pickup date:</strong> {{.StartDate}}</li>
    <li><strong>Return date:</strong> {{.EndDate}}</li>
    <li><strong>Pickup branch:</strong> {{.PickupBranch}}</li>
    <li><strong>Return branch:</strong> {{.ReturnBranch}}</li>
    <li><strong>Reservation total:</strong> {{.Total}}</li>
</ul>
<p><strong>Refund:</strong></p>
<ul>
    <li><strong>Amount to refund:</strong> {{.Refund}}</li>
    <li><strong>Refund type:</strong> {{.RefundType}}</li>
</ul>
<p>The refund will be processed under our cancellation policy.</p>
<p>We are sorry to see the trip fall through. Hope to see you again soon.</p>
<p>Regards,<br/>The Mobirent team</p>
`))

type mailData struct {
	UserName     string
	Number       string
	VehicleLabel string
	StartDate    string
	EndDate      string
	PickupBranch string
	ReturnBranch string
	Total        string
	Refund       string
	RefundType   string
}

func render(event commands.ReservationEvent) (subject, body string, err error) {
	data := mailData{
		UserName:     event.UserName,
		Number:       event.Number,
		VehicleLabel: event.VehicleLabel,
		StartDate:    formatDate(event.StartDate),
		EndDate:      formatDate(event.EndDate),
		PickupBranch: event.PickupBranch,
		ReturnBranch: event.ReturnBranch,
		Total:        formatAmount(event.TotalCents),
	}

	var (
		tmpl *template.Template
		b    strings.Builder
	)
	switch event.Kind {
	case commands.EventReservationConfirmed:
		subject = "Reservation voucher - " + event.Number
		tmpl = voucherTmpl
	case commands.EventReservationCancelled:
		subject = "Cancellation confirmed - reservation #" + event.Number
		tmpl = cancellationTmpl
		if event.RefundCents != nil {
			data.Refund = formatAmount(*event.RefundCents)
		} else {
			data.Refund = formatAmount(0)
		}
		data.RefundType = event.RefundType
	default:
		return "", "", errs.New("unknown event kind: " + event.Kind)
	}

	if err := tmpl.Execute(&b, data); err != nil {
		return "", "", errs.Wrap(err, "failed to render mail body")
	}
	return subject, b.String(), nil
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}

// formatDate turns the wire date (2006-01-02) into a reader-friendly form;
// unparseable input passes through untouched.
func formatDate(s string) string {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return t.Format("02 Jan 2006")
}
