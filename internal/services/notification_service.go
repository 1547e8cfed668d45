package services

import (
	"fmt"
	"kasir_pos/internal/models"
	"strings"

	"github.com/sirupsen/logrus"
)

// MessageSender is the outbound messaging gateway (WhatsApp client).
type MessageSender interface {
	SendTextMessage(phone, message string) error
}

// NotificationService formats and sends order messages to customers. Every
// send is best-effort: a delivery failure is logged and never propagated,
// so it can never roll back a sale.
type NotificationService interface {
	NotifyPendingCash(sale *models.Sale, phone string)
	NotifyPendingGateway(sale *models.Sale, phone string)
	NotifyPaid(sale *models.Sale, phone string)
}

type notificationService struct {
	sender MessageSender
}

func NewNotificationService(sender MessageSender) NotificationService {
	return &notificationService{sender: sender}
}

func (s *notificationService) NotifyPendingCash(sale *models.Sale, phone string) {
	message := fmt.Sprintf("Pesanan %s diterima.\n%s\nSilakan bayar di kasir. Terima kasih!",
		sale.InvoiceNumber, formatItems(sale))
	s.send(sale, phone, message)
}

func (s *notificationService) NotifyPendingGateway(sale *models.Sale, phone string) {
	message := fmt.Sprintf("Pesanan %s diterima.\n%s\nSelesaikan pembayaran di: %s",
		sale.InvoiceNumber, formatItems(sale), sale.RedirectURL)
	s.send(sale, phone, message)
}

func (s *notificationService) NotifyPaid(sale *models.Sale, phone string) {
	message := fmt.Sprintf("Pembayaran untuk pesanan %s sebesar Rp%.0f telah diterima. Terima kasih!",
		sale.InvoiceNumber, sale.Total)
	s.send(sale, phone, message)
}

func (s *notificationService) send(sale *models.Sale, phone, message string) {
	if phone == "" {
		return
	}
	if err := s.sender.SendTextMessage(phone, message); err != nil {
		logrus.WithFields(logrus.Fields{
			"invoice": sale.InvoiceNumber,
			"phone":   phone,
		}).WithError(err).Warn("failed to send customer notification")
	}
}

func formatItems(sale *models.Sale) string {
	var b strings.Builder
	for _, item := range sale.Items {
		fmt.Fprintf(&b, "- %dx produk #%d: Rp%.0f\n", item.Quantity, item.ProductID, item.Subtotal)
	}
	fmt.Fprintf(&b, "Total: Rp%.0f", sale.Total)
	return b.String()
}
