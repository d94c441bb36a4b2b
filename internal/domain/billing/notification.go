package billing

import (
	"fmt"

	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/shared/valueobject"
)

// ReminderType identifies which tenant-facing reminder window applies
type ReminderType string

const (
	// ReminderPreDue fires five days before the due date
	ReminderPreDue ReminderType = "PRE_DUE_5"
	// ReminderPostDue fires the day after the due date while unpaid
	ReminderPostDue ReminderType = "POST_DUE_1"
)

// Reminder offsets in days relative to the due date
const (
	preDueOffsetDays            = 5
	postDueOffsetDays           = 1
	guarantorEscalationDaysLate = 5
)

// TenantReminderDue decides whether an occupant-facing reminder is due on the
// given day. Returns ReminderPreDue exactly five days before the due date,
// ReminderPostDue exactly one day after it while the installment is not PAID,
// nil otherwise. Whole-calendar-day equality is used, never timestamp
// subtraction.
//
// There is no sent-ledger: the decision is recomputed on every read, so
// repeated views on the same day can emit duplicates.
func TenantReminderDue(installment *Installment, today time.Time) *ReminderType {
	if dayNumber(today) == dayNumber(installment.DueDate.AddDate(0, 0, -preDueOffsetDays)) {
		r := ReminderPreDue
		return &r
	}
	if installment.Status != StatusPaid &&
		dayNumber(today) == dayNumber(installment.DueDate.AddDate(0, 0, postDueOffsetDays)) {
		r := ReminderPostDue
		return &r
	}
	return nil
}

// GuarantorEscalationDue reports whether the guarantor escalation falls on
// the given day (five days past due). It deliberately ignores status; the
// caller excludes PAID/IN_AGREEMENT installments and contracts without a
// guarantor before emitting.
func GuarantorEscalationDue(installment *Installment, today time.Time) bool {
	return dayNumber(today) == dayNumber(installment.DueDate.AddDate(0, 0, guarantorEscalationDaysLate))
}

// Message is a rendered reminder ready for the delivery channels
type Message struct {
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	WhatsAppText string `json:"whatsapp_text"`
}

// formatDueDate renders the fixed dd/mm/yyyy office locale
func formatDueDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// BuildTenantMessage renders the occupant-facing reminder for the given
// window. Output is deterministic for a given installment state.
func BuildTenantMessage(installment *Installment, contractID uuid.UUID, dueType ReminderType) Message {
	due := formatDueDate(installment.DueDate)
	amount := valueobject.NewMoneyARS(installment.DueAmount).FormatGrouped()

	switch dueType {
	case ReminderPreDue:
		return Message{
			Subject: fmt.Sprintf("Recordatorio: alquiler %s vence el %s", installment.PeriodKey, due),
			Body: fmt.Sprintf(
				"Le recordamos que la cuota %s del contrato %s vence el %s.\n"+
					"Importe a abonar: %s.",
				installment.PeriodKey, contractID, due, amount),
			WhatsAppText: fmt.Sprintf(
				"Hola! Le recordamos que la cuota %s vence el %s. Importe: %s.",
				installment.PeriodKey, due, amount),
		}
	default:
		return Message{
			Subject: fmt.Sprintf("Cuota %s vencida el %s", installment.PeriodKey, due),
			Body: fmt.Sprintf(
				"La cuota %s del contrato %s venció el %s y registra un saldo pendiente de %s.\n"+
					"Por favor regularice el pago a la brevedad.",
				installment.PeriodKey, contractID, due, amount),
			WhatsAppText: fmt.Sprintf(
				"Hola! La cuota %s venció el %s. Saldo pendiente: %s.",
				installment.PeriodKey, due, amount),
		}
	}
}

// BuildGuarantorMessage renders the guarantor-facing escalation notice
func BuildGuarantorMessage(installment *Installment, contractID uuid.UUID, occupantName string) Message {
	due := formatDueDate(installment.DueDate)
	amount := valueobject.NewMoneyARS(installment.DueAmount).FormatGrouped()

	return Message{
		Subject: fmt.Sprintf("Aviso de garante: cuota %s impaga", installment.PeriodKey),
		Body: fmt.Sprintf(
			"En su carácter de garante del contrato %s le informamos que la cuota %s de %s,\n"+
				"con vencimiento el %s, permanece impaga. Saldo pendiente: %s.",
			contractID, installment.PeriodKey, occupantName, due, amount),
		WhatsAppText: fmt.Sprintf(
			"Aviso de garante: la cuota %s de %s venció el %s y sigue impaga. Saldo: %s.",
			installment.PeriodKey, occupantName, due, amount),
	}
}
