package api

import "github.com/gofiber/fiber/v2"

// Route is an interface for any module that wants to register endpoints
type Route interface {
	Setup(app *fiber.App)
}

// Response is the standard envelope for every JSON payload
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Success writes a 200 envelope with data
func Success(c *fiber.Ctx, data any) error {
	return c.JSON(Response{Success: true, Data: data})
}

// SuccessMessage writes a 200 envelope with data and a message
func SuccessMessage(c *fiber.Ctx, data any, message string) error {
	return c.JSON(Response{Success: true, Data: data, Message: message})
}

// Created writes a 201 envelope with data
func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Response{Success: true, Data: data})
}

// Error writes an envelope with success=false and the given status code
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Response{Success: false, Message: message})
}
