package controllers

import (
	"github.com/gofiber/fiber/v2"

	"lms/middleware"
)

// GetUserCertificates lists the caller's certificates
func GetUserCertificates(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	certificates, err := certificateService.ListForUser(c.UserContext(), userID)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", certificates)
}

// VerifyCertificate is the public lookup of a certificate number
func VerifyCertificate(c *fiber.Ctx) error {
	number := c.Locals("certificateNumber").(string)

	verification, err := certificateService.Verify(c.UserContext(), number)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate is valid.", verification)
}

// AdminIssueCertificate issues, or returns, the certificate of one completed
// enrollment
func AdminIssueCertificate(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(int)

	cert, err := certificateService.Issue(c.UserContext(), uint(enrollmentID))
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate issued successfully!", cert)
}

// AdminRetryCertificates runs one retry sweep over completed enrollments
// that still lack a certificate
func AdminRetryCertificates(c *fiber.Ctx) error {
	issued, err := certificateService.RetryPending(c.UserContext(), 50)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate retry completed!", fiber.Map{"issued": issued})
}
