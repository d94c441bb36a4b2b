package billing

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installment due 2024-06-10
func reminderInstallment(t *testing.T) *Installment {
	t.Helper()
	return createTestInstallment(t)
}

func TestTenantReminderDue_PreDueWindow(t *testing.T) {
	inst := reminderInstallment(t)

	tests := []struct {
		name  string
		today time.Time
		want  *ReminderType
	}{
		{"exactly D-5", date(2024, time.June, 5), ptr(ReminderPreDue)},
		{"D-6 is silent", date(2024, time.June, 4), nil},
		{"D-4 is silent", date(2024, time.June, 6), nil},
		{"due day is silent", date(2024, time.June, 10), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TenantReminderDue(inst, tt.today)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func TestTenantReminderDue_PostDueWindow(t *testing.T) {
	inst := reminderInstallment(t)

	got := TenantReminderDue(inst, date(2024, time.June, 11))
	require.NotNil(t, got)
	assert.Equal(t, ReminderPostDue, *got)

	assert.Nil(t, TenantReminderDue(inst, date(2024, time.June, 12)))

	// a paid installment never triggers the post-due reminder
	inst.Status = StatusPaid
	assert.Nil(t, TenantReminderDue(inst, date(2024, time.June, 11)))
}

func TestTenantReminderDue_TimeOfDayInvariant(t *testing.T) {
	inst := reminderInstallment(t)

	lateEvening := time.Date(2024, time.June, 5, 23, 45, 0, 0, time.UTC)
	got := TenantReminderDue(inst, lateEvening)
	require.NotNil(t, got)
	assert.Equal(t, ReminderPreDue, *got)
}

func TestGuarantorEscalationDue(t *testing.T) {
	inst := reminderInstallment(t)

	assert.True(t, GuarantorEscalationDue(inst, date(2024, time.June, 15)))
	assert.False(t, GuarantorEscalationDue(inst, date(2024, time.June, 14)))
	assert.False(t, GuarantorEscalationDue(inst, date(2024, time.June, 16)))

	// status is deliberately ignored here; exclusion happens in the caller
	inst.Status = StatusPaid
	assert.True(t, GuarantorEscalationDue(inst, date(2024, time.June, 15)))
}

func TestBuildTenantMessage(t *testing.T) {
	inst := reminderInstallment(t)
	contractID := uuid.New()

	pre := BuildTenantMessage(inst, contractID, ReminderPreDue)
	assert.Contains(t, pre.Subject, "2024-06")
	assert.Contains(t, pre.Subject, "10/06/2024") // dd/mm/yyyy
	assert.Contains(t, pre.Body, "100.000")       // thousands-grouped amount
	assert.NotEmpty(t, pre.WhatsAppText)

	post := BuildTenantMessage(inst, contractID, ReminderPostDue)
	assert.Contains(t, post.Subject, "vencida")
	assert.Contains(t, post.Body, contractID.String())

	// deterministic rendering
	assert.Equal(t, pre, BuildTenantMessage(inst, contractID, ReminderPreDue))
}

func TestBuildGuarantorMessage(t *testing.T) {
	inst := reminderInstallment(t)
	contractID := uuid.New()

	msg := BuildGuarantorMessage(inst, contractID, "Juan Pérez")
	assert.Contains(t, msg.Subject, "garante")
	assert.Contains(t, msg.Body, "Juan Pérez")
	assert.Contains(t, msg.Body, "10/06/2024")
	assert.True(t, strings.Contains(msg.WhatsAppText, "100.000"))
}

func ptr(r ReminderType) *ReminderType {
	return &r
}
