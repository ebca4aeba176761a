package review

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/", func(c *fiber.Ctx) error {
		var req Review
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		rv, err := svc.Create(c.Context(), req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "review": rv})
	})

	r.Get("/trip/:id", func(c *fiber.Ctx) error {
		reviews, err := svc.ListByTrip(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		if reviews == nil {
			reviews = []Review{}
		}
		return c.JSON(fiber.Map{"success": true, "reviews": reviews})
	})

	r.Get("/platform", func(c *fiber.Ctx) error {
		reviews, err := svc.ListPlatform(c.Context())
		if err != nil {
			return err
		}
		if reviews == nil {
			reviews = []Review{}
		}
		return c.JSON(fiber.Map{"success": true, "reviews": reviews})
	})
}
