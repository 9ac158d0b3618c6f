package mailer

import (
	"fmt"

	"tour-booking/pkg/utils"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email over SMTP.
type Mailer interface {
	SendOTP(to, otp string, expiryMinutes int) error
	SendBookingConfirmation(to, customerName, orderID, tourName, departureDate string, totalPrice float64) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

func New(config utils.EmailConfig, logger *zap.Logger) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(config.Host, config.Port, config.User, config.Password),
		from:   config.From,
		log:    logger.With(zap.String("component", "mailer")),
	}
}

func (m *smtpMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}

	return nil
}

func (m *smtpMailer) SendOTP(to, otp string, expiryMinutes int) error {
	subject := "Your password reset code"
	body := fmt.Sprintf(`
		<h2>Password Reset</h2>
		<p>Use this code to reset your password:</p>
		<h1 style="letter-spacing: 4px;">%s</h1>
		<p>The code expires in %d minutes. If you did not request a reset, ignore this email.</p>
	`, otp, expiryMinutes)

	m.log.Info("Sending OTP email", zap.String("to", to))
	return m.send(to, subject, body)
}

func (m *smtpMailer) SendBookingConfirmation(to, customerName, orderID, tourName, departureDate string, totalPrice float64) error {
	subject := fmt.Sprintf("Booking confirmed - %s", orderID)
	body := fmt.Sprintf(`
		<h2>Booking Confirmed</h2>
		<p>Hi %s,</p>
		<p>Your payment has been received and your booking is confirmed.</p>
		<ul>
			<li>Order: <b>%s</b></li>
			<li>Tour: %s</li>
			<li>Departure: %s</li>
			<li>Total paid: %.2f</li>
		</ul>
		<p>We look forward to seeing you!</p>
	`, customerName, orderID, tourName, departureDate, totalPrice)

	m.log.Info("Sending booking confirmation email",
		zap.String("to", to), zap.String("order_id", orderID))
	return m.send(to, subject, body)
}
