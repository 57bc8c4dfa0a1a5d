package controllers

import (
	"github.com/gofiber/fiber/v2"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	validators "lms/validators/course"
)

// AdminCreateModule creates a new module in a course
func AdminCreateModule(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	reqData := c.Locals("validatedModule").(*validators.ModuleRequest)

	course, err := managedCourse(c, uint(courseID))
	if course == nil {
		return err
	}

	module := courseModels.Module{
		CourseID:    course.ID,
		Title:       reqData.Title,
		Description: reqData.Description,
		OrderIndex:  reqData.OrderIndex,
	}

	if err := database.Database.Db.Create(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

// AdminUpdateModule updates a module
func AdminUpdateModule(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)
	reqData := c.Locals("validatedModuleUpdate").(*validators.ModuleUpdateRequest)

	course, err := managedCourse(c, uint(courseID))
	if course == nil {
		return err
	}

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", moduleID, course.ID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	if reqData.Title != nil {
		module.Title = *reqData.Title
	}
	if reqData.Description != nil {
		module.Description = *reqData.Description
	}
	if reqData.OrderIndex != nil {
		module.OrderIndex = *reqData.OrderIndex
	}

	if err := database.Database.Db.Save(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

// AdminDeleteModule soft deletes a module and its lessons
func AdminDeleteModule(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)

	course, err := managedCourse(c, uint(courseID))
	if course == nil {
		return err
	}

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", moduleID, course.ID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	tx := database.Database.Db.Begin()
	if err := tx.Model(&module).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}
	if err := tx.Model(&courseModels.Lesson{}).Where("module_id = ?", module.ID).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module lessons!", nil)
	}
	if err := tx.Commit().Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}

// AdminListModules lists the modules of a course with their lessons
func AdminListModules(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	course, err := managedCourse(c, uint(courseID))
	if course == nil {
		return err
	}

	var modules []courseModels.Module
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ?", course.ID, false).Order("order_index asc").Find(&modules).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch modules!", nil)
	}

	var lessons []courseModels.Lesson
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", course.ID, false).Order("order_index asc, id asc").Find(&lessons)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", groupLessons(modules, lessons))
}
