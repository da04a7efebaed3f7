package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"kasuwa.GO/config"
	inventoryService "kasuwa.GO/service/inventory"
)

func newService() (*inventoryService.InventoryService, error) {
	db, err := config.NewDB()
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	config.InitRedis()
	return inventoryService.NewInventoryService(db, config.RedisClient, nil), nil
}

var (
	importStockFile string
	importCreatedBy string
)

var stockImportCmd = &cobra.Command{
	Use:   "stock:import",
	Short: "Import stock levels from a JSON file",
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(importStockFile)
		if err != nil {
			fmt.Printf("Failed to read file: %v\n", err)
			return
		}
		var items []inventoryService.ImportItem
		if err := json.Unmarshal(data, &items); err != nil {
			fmt.Printf("Invalid JSON: %v\n", err)
			return
		}

		svc, err := newService()
		if err != nil {
			fmt.Println(err)
			return
		}

		start := time.Now()
		res, err := svc.ImportStock(context.Background(), items, importCreatedBy)
		if err != nil {
			fmt.Printf("Import failed: %v\n", err)
			return
		}

		for _, w := range res.Warnings {
			fmt.Printf("  [warn] %s\n", w)
		}
		fmt.Printf(`
=== Import Report ===
Items:     %d
Imported:  %d
Skipped:   %d
Time:      %s
=====================
`, len(items), res.Imported, res.Skipped, time.Since(start).Round(time.Millisecond))
	},
}

var (
	adjProduct string
	adjType    string
	adjQty     int
	adjReason  string
	adjForce   bool
	adjBy      string
)

var stockAdjustCmd = &cobra.Command{
	Use:   "stock:adjust",
	Short: "Adjust stock for a single product",
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := newService()
		if err != nil {
			fmt.Println(err)
			return
		}
		rec, err := svc.Adjustments().Adjust(context.Background(), inventoryService.Adjustment{
			ProductID: adjProduct,
			Type:      adjType,
			Quantity:  adjQty,
			Reason:    adjReason,
			Force:     adjForce,
			CreatedBy: adjBy,
		})
		if err != nil {
			fmt.Printf("Adjustment failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Product %s: quantity=%d reserved=%d available=%d status=%s\n",
			rec.ProductID, rec.Quantity, rec.ReservedQuantity, rec.AvailableQuantity(), rec.Status)
	},
}

var stockSweepCmd = &cobra.Command{
	Use:   "stock:sweep",
	Short: "Release all expired reservations now",
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := newService()
		if err != nil {
			fmt.Println(err)
			return
		}
		reaped, err := svc.ExpireReservations(time.Now().UTC())
		if err != nil {
			fmt.Printf("Sweep failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Released %d expired reservations\n", reaped)
	},
}

func init() {
	stockImportCmd.Flags().StringVarP(&importStockFile, "file", "f", "", "JSON file path (required)")
	stockImportCmd.MarkFlagRequired("file")
	stockImportCmd.Flags().StringVar(&importCreatedBy, "by", "cli", "Actor recorded on the movements")

	stockAdjustCmd.Flags().StringVarP(&adjProduct, "product", "p", "", "Product ID (required)")
	stockAdjustCmd.MarkFlagRequired("product")
	stockAdjustCmd.Flags().StringVarP(&adjType, "type", "t", "set", "Adjustment type: set, increase or decrease")
	stockAdjustCmd.Flags().IntVarP(&adjQty, "quantity", "q", 0, "Quantity or target level")
	stockAdjustCmd.Flags().StringVarP(&adjReason, "reason", "r", "", "Reason recorded on the ledger (required)")
	stockAdjustCmd.MarkFlagRequired("reason")
	stockAdjustCmd.Flags().BoolVar(&adjForce, "force", false, "Override the reserved-stock guard")
	stockAdjustCmd.Flags().StringVar(&adjBy, "by", "cli", "Actor recorded on the movement")

	rootCmd.AddCommand(stockImportCmd)
	rootCmd.AddCommand(stockAdjustCmd)
	rootCmd.AddCommand(stockSweepCmd)
}
