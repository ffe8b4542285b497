package web

import (
	"time"

	vm "github.com/slackdeck/slackdeck/internal/adapter/driving/web/viewmodel"
	"github.com/slackdeck/slackdeck/internal/application"
	"github.com/slackdeck/slackdeck/internal/domain/model"
)

// displayTimeFormat is the human-facing timestamp format used on the dashboard.
const displayTimeFormat = "2006-01-02 15:04"

// toCredentialViewModel converts a domain Credential to its view model.
func toCredentialViewModel(cred model.Credential) vm.CredentialViewModel {
	lastUsed := ""
	if cred.LastUsed != nil {
		lastUsed = cred.LastUsed.UTC().Format(displayTimeFormat)
	}

	return vm.CredentialViewModel{
		ID:       cred.ID,
		Name:     cred.Name,
		TeamName: cred.TeamName,
		UserName: cred.UserName,
		AddedAt:  cred.CreatedAt.UTC().Format(displayTimeFormat),
		LastUsed: lastUsed,
	}
}

// toSentMessageViewModel converts a domain SentMessage to its view model.
// The message body is rendered to sanitized HTML here so templates only
// ever see safe markup.
func toSentMessageViewModel(msg model.SentMessage) vm.SentMessageViewModel {
	threadTS := ""
	if msg.ThreadTS != nil {
		threadTS = *msg.ThreadTS
	}

	return vm.SentMessageViewModel{
		TS:          msg.MessageTS,
		ChannelID:   msg.ChannelID,
		ChannelName: msg.ChannelName,
		User:        msg.UserID,
		Text:        msg.Text,
		TextHTML:    RenderMarkdown(msg.Text),
		IsReply:     msg.IsThreadReply(),
		ThreadTS:    threadTS,
		SentAt:      msg.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// toDashboardViewModel converts dashboard data into the page view model.
func toDashboardViewModel(data *application.DashboardData, flash *vm.FlashViewModel) vm.DashboardViewModel {
	creds := make([]vm.CredentialViewModel, 0, len(data.Credentials))
	for _, cred := range data.Credentials {
		creds = append(creds, toCredentialViewModel(cred))
	}

	msgs := make([]vm.SentMessageViewModel, 0, len(data.RecentMessages))
	for _, msg := range data.RecentMessages {
		msgs = append(msgs, toSentMessageViewModel(msg))
	}

	return vm.DashboardViewModel{
		Flash:          flash,
		Credentials:    creds,
		RecentMessages: msgs,
	}
}
