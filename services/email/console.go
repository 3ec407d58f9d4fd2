package emailsvc

import (
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/matibabu/core"
)

// SentMessages captures messages in test mode so tests can assert delivery.
var (
	SentMessages = make([]core.EmailMessage, 0)
	mu           sync.Mutex
)

type consoleService struct {
	conf             *core.Config
	defaultFromEmail mail.Address
	subjPrefix       string
	disableOutput    bool
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) core.EmailService {
	return &consoleService{
		conf:             conf,
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
	}
}

// NewConsoleServiceMock captures messages without printing them.
func NewConsoleServiceMock(conf *core.Config) core.EmailService {
	return &consoleService{
		conf:             conf,
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
		disableOutput:    true,
	}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		svc.sendMessage(msg)
	}
}

func (svc consoleService) sendMessage(msg *core.EmailMessage) {
	if err := msg.Render(svc.conf); err != nil {
		log.Printf("%+v", errors.Wrap(err, "rendering email"))
		return
	}
	if !(msg.HasRecipients() && (msg.HasContent() || msg.HasAttachments())) {
		return
	}

	if svc.conf.TestMode || svc.disableOutput {
		mu.Lock()
		SentMessages = append(SentMessages, *msg)
		mu.Unlock()
	}
	if svc.disableOutput {
		return
	}

	var b strings.Builder
	b.WriteString("\n---------- EMAIL ----------\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\n")
	b.WriteString("From: " + svc.defaultFromEmail.String() + "\n")
	b.WriteString("To: " + joinAddresses(msg.To) + "\n")
	if len(msg.Cc) > 0 {
		b.WriteString("Cc: " + joinAddresses(msg.Cc) + "\n")
	}
	b.WriteString("Subject: " + svc.subjPrefix + msg.Subject + "\n")
	for _, at := range msg.Attachments {
		b.WriteString(fmt.Sprintf("Attachment: %s (%s, %d bytes base64)\n", at.Filename, at.ContentType, at.Content.Len()))
	}
	b.WriteString("\n" + msg.TextContent + "\n")
	b.WriteString("---------------------------\n")
	log.Print(b.String())
}

func joinAddresses(addrs []mail.Address) string {
	strs := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		strs = append(strs, addr.String())
	}
	return strings.Join(strs, ", ")
}
