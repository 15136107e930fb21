// stock-rebuild recomputes every product's stock projection from the stock
// movement ledger. Run it after a suspected projection drift; the ledger is
// the source of truth and is never modified here.
//
// Usage:
//
//	go run ./cmd/stock-rebuild -business <business-id> [-dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/bizsuite/erp_backend/config"
	"github.com/bizsuite/erp_backend/models"
	"github.com/bizsuite/erp_backend/utils"
	"github.com/shopspring/decimal"
)

func main() {
	businessId := flag.String("business", "", "business id to rebuild (required)")
	dryRun := flag.Bool("dry-run", false, "report drift without writing")
	flag.Parse()

	if *businessId == "" {
		fmt.Fprintln(os.Stderr, "missing -business")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()

	ctx := utils.SetBusinessIdInContext(context.Background(), *businessId)
	ctx = utils.SetUserNameInContext(ctx, "stock-rebuild")

	products, err := models.GetProducts(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list products: %v\n", err)
		os.Exit(1)
	}

	var drifted int
	for _, product := range products {
		movements, err := models.GetStockMovements(ctx, &product.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list movements for product %d: %v\n", product.ID, err)
			os.Exit(1)
		}
		sum := decimal.Zero
		for _, m := range movements {
			sum = sum.Add(m.SignedQty())
		}
		if sum.Equal(product.Stock) {
			continue
		}
		drifted++
		fmt.Printf("product %d (%s): projected %s, ledger %s\n", product.ID, product.Name, product.Stock, sum)
		if *dryRun {
			continue
		}
		err = config.GetDB().WithContext(ctx).Model(&models.Product{}).
			Where("business_id = ? AND id = ?", *businessId, product.ID).
			Update("stock", sum).Error
		if err != nil {
			fmt.Fprintf(os.Stderr, "rebuild product %d: %v\n", product.ID, err)
			os.Exit(1)
		}
	}

	fmt.Printf("checked %d products, %d drifted\n", len(products), drifted)
}
