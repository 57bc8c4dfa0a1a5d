package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"lms/middleware"
	"lms/models"
	"lms/services/attempt"
	"lms/services/certificate"
	"lms/services/progress"
	"lms/storage"
)

var (
	progressService    *progress.Service
	certificateService *certificate.Service
	fileStorage        storage.Storage
)

// Setup wires the services used by the course handlers.
func Setup(p *progress.Service, cert *certificate.Service, st storage.Storage) {
	progressService = p
	certificateService = cert
	fileStorage = st
}

// serviceError maps a service failure onto the response the client sees.
func serviceError(c *fiber.Ctx, err error) error {
	if r, ok := attempt.AsRejection(err); ok {
		return middleware.JsonResponse(c, r.Status, false, r.Message, fiber.Map{"reason": r.Reason})
	}

	switch {
	case errors.Is(err, progress.ErrNotEnrolled):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this course!", nil)
	case errors.Is(err, progress.ErrLessonNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	case errors.Is(err, progress.ErrQuizNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	case errors.Is(err, progress.ErrCourseNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not active!", nil)
	case errors.Is(err, progress.ErrAlreadyEnrolled):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "User already enrolled in this course!", nil)
	case errors.Is(err, progress.ErrConcurrentUpdate):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Your progress changed while saving, please try again!", nil)
	case errors.Is(err, progress.ErrQuizMisconfigured):
		log.Error().Err(err).Str("path", c.Path()).Msg("quiz definition rejected by grader")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Quiz is misconfigured!", nil)
	case errors.Is(err, certificate.ErrEnrollmentNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	case errors.Is(err, certificate.ErrNotCompleted):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course is not completed yet!", nil)
	case errors.Is(err, certificate.ErrCertificateNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
}

// canManage reports whether user may author courseFacilitator's course.
func canManage(role string, userID, courseFacilitator uint) bool {
	return role == models.RoleAdmin || courseFacilitator == userID
}
