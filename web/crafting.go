package web

import (
	"github.com/gofiber/fiber/v2"
)

// ListRecipes returns the crafting catalog with ingredients and results.
func ListRecipes(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recipes, err := a.Crafting.Recipes(c.Context())
		if err != nil {
			return internalError(c, err)
		}

		out := make([]fiber.Map, 0, len(recipes))
		for _, r := range recipes {
			ingredients := make([]fiber.Map, 0, len(r.Ingredients))
			for _, ing := range r.Ingredients {
				entry := fiber.Map{"quantity": ing.Quantity}
				if ing.Item != nil {
					entry["code"] = ing.Item.Code
					entry["name"] = ing.Item.Name
					entry["rarity"] = ing.Item.Rarity
				}
				ingredients = append(ingredients, entry)
			}
			recipe := fiber.Map{
				"code":        r.Code,
				"name":        r.Name,
				"ingredients": ingredients,
			}
			if r.ResultItem != nil {
				recipe["result"] = fiber.Map{
					"name":   r.ResultItem.Name,
					"rarity": r.ResultItem.Rarity,
					"icon":   r.ResultItem.Icon,
				}
			}
			out = append(out, recipe)
		}
		return c.JSON(fiber.Map{"recipes": out})
	}
}

// CraftItem executes a recipe for the user. Publishes a craft event with the
// crafter's name on success.
func CraftItem(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}
		recipeCode := c.Params("recipeCode")
		if recipeCode == "" {
			return badRequest(c, "recipe code is required")
		}

		result, err := a.Crafting.Craft(c.Context(), userID, recipeCode)
		if err != nil {
			return mapDomainError(c, err)
		}

		username := ""
		if user, uerr := a.Users.GetByID(c.Context(), userID); uerr == nil && user != nil {
			username = user.Username
		}
		a.Bus.Publish("craft", fiber.Map{
			"userId":      userID,
			"username":    username,
			"crafted":     result.Crafted,
			"itemIcon":    result.ItemIcon,
			"newQuantity": result.NewQuantity,
		})

		return c.JSON(result)
	}
}
