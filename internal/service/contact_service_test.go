package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RealCodeCrafter/trt-backend/internal/config"
	"github.com/RealCodeCrafter/trt-backend/internal/domain"
)

func TestContactService_Send(t *testing.T) {
	sender := &memSender{}
	svc := NewContactService(sender, config.ContactConfig{})
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) }

	err := svc.Send(context.Background(), domain.ContactMessage{
		Name:    "Ali <script>",
		Phone:   "+998901112233",
		Comment: "line one\nline two",
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "TRT-Parts - new message: Ali <script>", msg.Subject)
	assert.Contains(t, msg.Text, "Phone: +998901112233")
	assert.Contains(t, msg.HTML, "Ali &lt;script&gt;")
	assert.Contains(t, msg.HTML, "line one<br>line two")
	assert.Contains(t, msg.HTML, "2026")
}

func TestContactService_Validation(t *testing.T) {
	sender := &memSender{}
	svc := NewContactService(sender, config.ContactConfig{})

	err := svc.Send(context.Background(), domain.ContactMessage{Name: "Ali"})
	de := requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, de.Details, "phone")
	assert.Contains(t, de.Details, "comment")
	assert.Empty(t, sender.sent)
}

func TestContactService_TransportFailureIsGeneric(t *testing.T) {
	svc := NewContactService(&memSender{err: errBoom}, config.ContactConfig{})

	err := svc.Send(context.Background(), domain.ContactMessage{Name: "a", Phone: "b", Comment: "c"})
	de := requireStatus(t, err, http.StatusInternalServerError)
	assert.Equal(t, "failed to send message", de.Message)
}

func TestContactService_Info(t *testing.T) {
	svc := NewContactService(&memSender{}, config.ContactConfig{Phone: "+1", Email: "e@x", Address: "Tashkent"})
	assert.Equal(t, ContactInfo{Phone: "+1", Email: "e@x", Address: "Tashkent"}, svc.Info())
}
