package custom

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"kasuwa.GO/api"
	"kasuwa.GO/cmd"
	"kasuwa.GO/cron"
	gqlregistry "kasuwa.GO/graphql/registry"
)

// Example extension package: one registration per extension point. Copy this
// file as a starting point for marketplace-specific additions.
func init() {
	// GraphQL extension, reachable as _extension(name: "warehouseInfo").
	gqlregistry.Register("warehouseInfo", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return map[string]string{
			"warehouse": "lagos-main",
			"region":    "NG-LA",
		}, nil
	})

	// CLI command
	cmd.Register(&cobra.Command{
		Use:   "custom:warehouse",
		Short: "Print the configured warehouse",
		Run: func(c *cobra.Command, args []string) {
			fmt.Println("warehouse: lagos-main")
		},
	})

	// Cron job
	cron.Register("warehouseheartbeat", "@every 5m", func(args ...string) {
		fmt.Println("Custom cron: warehouse heartbeat")
	})

	// HTTP route
	api.RegisterGET("/custom/warehouse", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"warehouse": "lagos-main", "status": "ok"})
	})
}
