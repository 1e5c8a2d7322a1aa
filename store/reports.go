package store

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"stocksence/infrastructure/audit"
	"stocksence/models"
)

// ProductTotal aggregates the active sales of one product.
type ProductTotal struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Units       int64   `json:"units"`
	Revenue     float64 `json:"revenue"`
}

// SalesSummary is the dashboard view of a company.
type SalesSummary struct {
	SaleCount      int              `json:"saleCount"`
	UnitsSold      int64            `json:"unitsSold"`
	TotalRevenue   float64          `json:"totalRevenue"`
	ProductCount   int              `json:"productCount"`
	InventoryValue float64          `json:"inventoryValue"`
	TrashCount     int              `json:"trashCount"`
	ByProduct      []ProductTotal   `json:"byProduct"`
	LowStock       []models.Product `json:"lowStock"`
}

// SalesSummary totals the active sales and stock of the caller's company.
func (s *Store) SalesSummary(ctx context.Context) (SalesSummary, error) {
	var out SalesSummary
	err := s.do(ctx, "salesSummary", func(o *op) error {
		u, err := s.requireSession(o)
		if err != nil {
			return err
		}
		out = summarize(s.state, u.CompanyID)
		return nil
	})
	return out, err
}

func summarize(st models.State, companyID string) SalesSummary {
	out := SalesSummary{ByProduct: []ProductTotal{}, LowStock: []models.Product{}}

	revenue := decimal.Zero
	type acc struct {
		name    string
		units   int64
		revenue decimal.Decimal
	}
	perProduct := map[string]*acc{}
	for _, sale := range st.Sales {
		if sale.CompanyID != companyID {
			continue
		}
		amount := decimal.NewFromFloat(sale.TotalAmount)
		revenue = revenue.Add(amount)
		out.SaleCount++
		out.UnitsSold += sale.Quantity

		a, ok := perProduct[sale.ProductID]
		if !ok {
			a = &acc{name: sale.ProductName, revenue: decimal.Zero}
			perProduct[sale.ProductID] = a
		}
		a.units += sale.Quantity
		a.revenue = a.revenue.Add(amount)
	}
	out.TotalRevenue = revenue.Round(2).InexactFloat64()

	for id, a := range perProduct {
		out.ByProduct = append(out.ByProduct, ProductTotal{
			ProductID:   id,
			ProductName: a.name,
			Units:       a.units,
			Revenue:     a.revenue.Round(2).InexactFloat64(),
		})
	}
	sort.Slice(out.ByProduct, func(i, j int) bool {
		if out.ByProduct[i].Revenue != out.ByProduct[j].Revenue {
			return out.ByProduct[i].Revenue > out.ByProduct[j].Revenue
		}
		return out.ByProduct[i].ProductID < out.ByProduct[j].ProductID
	})

	inventory := decimal.Zero
	for _, p := range st.Products {
		if p.CompanyID != companyID {
			continue
		}
		out.ProductCount++
		inventory = inventory.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(p.Quantity)))
		if p.Quantity < LowStockThreshold {
			out.LowStock = append(out.LowStock, p)
		}
	}
	out.InventoryValue = inventory.Round(2).InexactFloat64()

	for _, d := range st.DeletedSales {
		if d.CompanyID == companyID {
			out.TrashCount++
		}
	}
	return out
}

// AuditLogs returns the caller's company history plus system entries, newest first. Admin only.
func (s *Store) AuditLogs(ctx context.Context) ([]models.AuditLog, error) {
	var out []models.AuditLog
	err := s.do(ctx, "auditLogs", func(o *op) error {
		admin, err := s.requireAdmin(o)
		if err != nil {
			return err
		}
		out = audit.ForCompany(s.state.AuditLogs, admin.CompanyID)
		return nil
	})
	return out, err
}
