package courseController

import (
	"strings"

	"innerspark/database"
	"innerspark/graphics"
	"innerspark/logger"
	"innerspark/middleware"
	"innerspark/models"
	courseModels "innerspark/models/course"

	"github.com/gofiber/fiber/v2"
)

func MyCertificates(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	var certs []courseModels.Certificate
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("issued_at desc").Find(&certs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", certs)
}

func findCertificate(number string) (*courseModels.Certificate, error) {
	var cert courseModels.Certificate
	err := database.Database.Db.
		Where("certificate_number = ? AND is_deleted = ?", strings.ToUpper(strings.TrimSpace(number)), false).
		First(&cert).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

// CertificateImage renders the certificate PNG for its holder or an admin
func CertificateImage(c *fiber.Ctx) error {
	user := optionalUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}
	cert, err := findCertificate(c.Params("number"))
	if err != nil {
		return notFoundOr500(c, err, "Certificate")
	}
	if cert.UserID != user.ID && user.Role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "This certificate belongs to someone else!", nil)
	}

	png, err := graphics.RenderCertificate(certificateData(cert))
	if err != nil {
		logger.Log.Error("certificate render failed", "certificate", cert.CertificateNumber, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to render certificate!", nil)
	}
	c.Type("png")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="certificate-`+cert.CertificateNumber+`.png"`)
	return c.Send(png)
}

// VerifyCertificate is public so employers can check a certificate number
func VerifyCertificate(c *fiber.Ctx) error {
	cert, err := findCertificate(c.Params("number"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", fiber.Map{"valid": false})
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate is valid.", fiber.Map{
		"valid":             true,
		"certificateNumber": cert.CertificateNumber,
		"holderName":        cert.HolderName,
		"courseTitle":       cert.CourseTitle,
		"score":             cert.Score,
		"issuedAt":          cert.IssuedAt,
	})
}
