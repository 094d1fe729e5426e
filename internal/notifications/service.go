package notifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/topicpulse/topicpulse/internal/config"
	"github.com/topicpulse/topicpulse/internal/models"
)

// Notifier is notified when a job reaches a terminal state.
type Notifier interface {
	NotifyJobFinished(job *models.Job) error
}

// Service sends job outcome notifications via Teams webhook and email,
// whichever are configured. Notification failures never affect job state.
type Service struct {
	config *config.Config
	client *resty.Client
}

var _ Notifier = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams message card.
type TeamsMessage struct {
	Type     string         `json:"@type"`
	Context  string         `json:"@context"`
	Title    string         `json:"title"`
	Text     string         `json:"text"`
	Sections []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle string      `json:"activityTitle,omitempty"`
	Facts         []TeamsFact `json:"facts,omitempty"`
	Markdown      bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// Enabled reports whether any notification channel is configured.
func (s *Service) Enabled() bool {
	return s.config.TeamsWebhookURL != "" || s.config.NotificationEmail != ""
}

// NotifyJobFinished sends the job's outcome via all configured channels.
func (s *Service) NotifyJobFinished(job *models.Job) error {
	var errs []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.sendToTeams(job); err != nil {
			logrus.Errorf("Failed to send Teams notification for job %s: %v", job.ID, err)
			errs = append(errs, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Infof("Sent Teams notification for job %s", job.ID)
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(job); err != nil {
			logrus.Errorf("Failed to send email notification for job %s: %v", job.ID, err)
			errs = append(errs, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Infof("Sent email notification for job %s", job.ID)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (s *Service) sendToTeams(job *models.Job) error {
	message := s.buildTeamsMessage(job)

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildTeamsMessage(job *models.Job) *TeamsMessage {
	message := &TeamsMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   fmt.Sprintf("Sentiment Analysis %s - %q", strings.Title(string(job.Status)), job.Topic),
		Text:    fmt.Sprintf("Job %s finished with status %s", job.ID, job.Status),
	}

	facts := []TeamsFact{
		{Name: "Topic", Value: job.Topic},
		{Name: "Status", Value: string(job.Status)},
	}
	if job.CompletedAt != nil {
		facts = append(facts, TeamsFact{Name: "Completed", Value: job.CompletedAt.Format("2006-01-02 15:04:05 UTC")})
	}

	if job.Result != nil {
		facts = append(facts,
			TeamsFact{Name: "Tweets Analyzed", Value: fmt.Sprintf("%d of %d", job.Result.AnalyzedTweets, job.Result.TotalTweets)},
			TeamsFact{Name: "Positive", Value: fmt.Sprintf("%.1f%%", job.Result.PositivePercentage)},
			TeamsFact{Name: "Negative", Value: fmt.Sprintf("%.1f%%", job.Result.NegativePercentage)},
			TeamsFact{Name: "Neutral", Value: fmt.Sprintf("%.1f%%", job.Result.NeutralPercentage)},
			TeamsFact{Name: "Average Polarity", Value: fmt.Sprintf("%.3f", job.Result.AveragePolarity)},
		)
	}
	if job.ErrorMessage != "" {
		facts = append(facts, TeamsFact{Name: "Error", Value: job.ErrorMessage})
	}

	message.Sections = append(message.Sections, TeamsSection{
		ActivityTitle: "Summary",
		Facts:         facts,
		Markdown:      true,
	})

	return message
}

func (s *Service) sendEmail(job *models.Job) error {
	subject := fmt.Sprintf("Sentiment Analysis %s - %q", strings.Title(string(job.Status)), job.Topic)

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", s.buildEmailText(job))

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *Service) buildEmailText(job *models.Job) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("Sentiment analysis job %s\n", job.ID))
	text.WriteString(fmt.Sprintf("Topic: %s\n", job.Topic))
	text.WriteString(fmt.Sprintf("Status: %s\n", job.Status))
	if job.CompletedAt != nil {
		text.WriteString(fmt.Sprintf("Completed: %s\n", job.CompletedAt.Format("2006-01-02 15:04:05 UTC")))
	}

	if job.Result != nil {
		text.WriteString("\nRESULTS\n")
		text.WriteString("=======\n")
		text.WriteString(fmt.Sprintf("Tweets analyzed: %d of %d\n", job.Result.AnalyzedTweets, job.Result.TotalTweets))
		text.WriteString(fmt.Sprintf("Positive: %.1f%%\n", job.Result.PositivePercentage))
		text.WriteString(fmt.Sprintf("Negative: %.1f%%\n", job.Result.NegativePercentage))
		text.WriteString(fmt.Sprintf("Neutral: %.1f%%\n", job.Result.NeutralPercentage))
		text.WriteString(fmt.Sprintf("Average polarity: %.3f\n", job.Result.AveragePolarity))
	}

	if job.ErrorMessage != "" {
		text.WriteString(fmt.Sprintf("\nError: %s\n", job.ErrorMessage))
	}

	text.WriteString("\n---\nThis notification was generated automatically by TopicPulse.\n")

	return text.String()
}
