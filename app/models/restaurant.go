package models

import (
	"encoding/json"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/pantry/pkg/mail"
)

// Restaurant is a tenant.
type Restaurant struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Address     string             `bson:"address" json:"address"`
	Phone       string             `bson:"phone" json:"phone"`
	Email       string             `bson:"email" json:"email"`
	EmailConfig EmailConfig        `bson:"emailConfig" json:"emailConfig"`
	Active      bool               `bson:"active" json:"active"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EmailConfig is the restaurant's outgoing mail account. The SMTP password is
// stored but never serialised to JSON.
type EmailConfig struct {
	FromName     string `bson:"fromName" json:"fromName"`
	FromAddress  string `bson:"fromAddress" json:"fromAddress"`
	SMTPHost     string `bson:"smtpHost" json:"smtpHost"`
	SMTPPort     int    `bson:"smtpPort" json:"smtpPort"`
	SMTPUser     string `bson:"smtpUser" json:"smtpUser"`
	SMTPPassword string `bson:"smtpPassword" json:"-"`
	Secure       bool   `bson:"secure" json:"secure"`
}

// MarshalJSON adds passwordSet so clients can tell whether a password is on
// file without seeing it.
func (c EmailConfig) MarshalJSON() ([]byte, error) {
	type plain EmailConfig
	return json.Marshal(struct {
		plain
		PasswordSet bool `json:"passwordSet"`
	}{plain(c), c.SMTPPassword != ""})
}

// SMTP converts the stored settings into a mail sender configuration.
func (c EmailConfig) SMTP() mail.SMTPConfig {
	cfg := mail.SMTPConfig{
		Host:        c.SMTPHost,
		Username:    c.SMTPUser,
		Password:    c.SMTPPassword,
		FromName:    c.FromName,
		FromAddress: c.FromAddress,
		TLS:         c.Secure,
	}
	if c.SMTPPort > 0 {
		cfg.Port = strconv.Itoa(c.SMTPPort)
	}
	return cfg
}
