package ticket

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/", func(c *fiber.Ctx) error {
		var body struct {
			TripID       string `json:"trip_id"`
			TravelerName string `json:"traveler_name"`
			Seat         string `json:"seat"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		t, err := svc.Issue(c.Context(), body.TripID, body.TravelerName, body.Seat)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "ticket": t})
	})

	r.Get("/trip/:id", func(c *fiber.Ctx) error {
		tickets, err := svc.ListByTrip(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		if tickets == nil {
			tickets = []Ticket{}
		}
		return c.JSON(fiber.Map{"success": true, "tickets": tickets})
	})

	r.Get("/:code", func(c *fiber.Ctx) error {
		t, err := svc.GetByCode(c.Context(), c.Params("code"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "ticket": t})
	})
}
