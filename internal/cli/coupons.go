package cli

import (
	"fmt"
	"strings"

	"github.com/cyberregistro/ledger/internal/repository"
	"github.com/cyberregistro/ledger/internal/service"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// couponFile 批量导入文件
//
//	[[coupon]]
//	code = "PARCEIRO10"
//	partner_name = "Loja Parceira"
//	discount_type = "percentage"
//	discount_value = "10"
//	max_uses = 100
//	expires_at = "2026-12-31"
type couponFile struct {
	Coupons []couponEntry `toml:"coupon"`
}

type couponEntry struct {
	Code          string `toml:"code"`
	PartnerName   string `toml:"partner_name"`
	DiscountType  string `toml:"discount_type"`
	DiscountValue string `toml:"discount_value"`
	MaxUses       *int   `toml:"max_uses"`
	ExpiresAt     string `toml:"expires_at"`
}

func init() {
	rootCmd.AddCommand(couponsCmd)
	couponsCmd.AddCommand(couponsImportCmd)
	couponsCmd.AddCommand(couponsBackfillCmd)

	couponsImportCmd.Flags().StringP("file", "f", "", "TOML file with [[coupon]] tables")
	_ = couponsImportCmd.MarkFlagRequired("file")
}

var couponsCmd = &cobra.Command{
	Use:   "coupons",
	Short: "Manage coupons",
}

var couponsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import coupons from a TOML file, skipping existing codes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		return current.importCoupons(path)
	},
}

var couponsBackfillCmd = &cobra.Command{
	Use:   "backfill-tokens",
	Short: "Issue partner dashboard tokens for coupons that have none",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return current.backfillTokens()
	},
}

func (e *env) couponAdmin() *service.CouponAdminService {
	return service.NewCouponAdminService(repository.NewCouponRepository(e.db))
}

func (e *env) importCoupons(path string) error {
	inputs, err := loadCouponFile(path)
	if err != nil {
		return err
	}
	result, err := e.couponAdmin().Import(inputs)
	if result != nil {
		e.printf("created %d, skipped %d\n", len(result.Created), len(result.Skipped))
		for _, code := range result.Skipped {
			e.printf("  skipped %s (already exists)\n", code)
		}
	}
	return err
}

func (e *env) backfillTokens() error {
	updated, err := e.couponAdmin().BackfillPartnerTokens()
	e.printf("partner tokens issued: %d\n", updated)
	return err
}

func loadCouponFile(path string) ([]service.CreateCouponInput, error) {
	var file couponFile
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in %s: %v", path, undecoded)
	}

	inputs := make([]service.CreateCouponInput, 0, len(file.Coupons))
	for i, entry := range file.Coupons {
		value, err := decimal.NewFromString(strings.TrimSpace(entry.DiscountValue))
		if err != nil {
			return nil, fmt.Errorf("coupon #%d: invalid discount_value %q", i+1, entry.DiscountValue)
		}
		expiresAt, err := service.ParseCouponExpiry(entry.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("coupon #%d: %w", i+1, err)
		}
		inputs = append(inputs, service.CreateCouponInput{
			Code:          entry.Code,
			PartnerName:   entry.PartnerName,
			DiscountType:  entry.DiscountType,
			DiscountValue: value,
			MaxUses:       entry.MaxUses,
			ExpiresAt:     expiresAt,
		})
	}
	return inputs, nil
}
