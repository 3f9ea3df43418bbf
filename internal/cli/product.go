package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/vitrina/internal/fetch"
	"github.com/hyperjump/vitrina/internal/fetcher"
	"github.com/hyperjump/vitrina/internal/models"
	"github.com/hyperjump/vitrina/internal/pricing"
)

type productOutput struct {
	ID      string          `json:"id"`
	Error   string          `json:"error,omitempty"`
	Kind    fetch.Kind      `json:"kind,omitempty"`
	Product json.RawMessage `json:"product,omitempty"`
}

// WriteProduct writes the detail state to w. Compact and xlsx fall back to text.
func WriteProduct(w io.Writer, state fetcher.DetailState, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(productOutput{ID: state.ID, Error: state.Error, Kind: state.Kind, Product: state.Product})
	}
	return writeProductText(w, state)
}

func writeProductText(w io.Writer, state fetcher.DetailState) error {
	switch {
	case state.IsLoading:
		fmt.Fprintln(w, "Cargando producto...")
		return nil
	case state.Kind == fetch.KindNotFound:
		fmt.Fprintln(w, "Producto no encontrado")
		fmt.Fprintln(w, "El producto que buscas no existe o ha sido eliminado.")
		return nil
	case state.Error != "":
		fmt.Fprintln(w, "Error al cargar el producto")
		fmt.Fprintln(w, state.Error)
		return nil
	case state.Product == nil:
		return nil
	}

	var p models.Product
	if err := json.Unmarshal(state.Product, &p); err != nil {
		return fmt.Errorf("decode product: %w", err)
	}

	status := pricing.FormatCondition(p.Condition)
	if p.SoldQuantity > 0 {
		status += fmt.Sprintf(" | +%d vendidos", p.SoldQuantity)
	}
	fmt.Fprintln(w, status)
	fmt.Fprintln(w, p.Title)
	if p.Reviews != nil && p.Reviews.Total > 0 {
		fmt.Fprintf(w, "%.1f %s (%d)\n", p.Reviews.RatingAverage, stars(p.Reviews.RatingAverage), p.Reviews.Total)
	}
	fmt.Fprintln(w)

	if discount := pricing.Discount(p.Price, p.OriginalPrice); discount > 0 {
		fmt.Fprintf(w, "Antes: $ %s\n", pricing.FormatPrice(p.OriginalPrice))
		fmt.Fprintf(w, "$ %s  %d%% OFF\n", pricing.FormatPrice(p.Price), discount)
	} else {
		fmt.Fprintf(w, "$ %s\n", pricing.FormatPrice(p.Price))
	}
	if p.Installments != nil && p.Installments.Quantity > 0 {
		fmt.Fprintf(w, "Mismo precio en %d cuotas de $ %s\n", p.Installments.Quantity, pricing.FormatPrice(p.Installments.Amount))
	}
	if p.Shipping != nil && p.Shipping.FreeShipping {
		fmt.Fprintln(w, "Llega gratis")
	}
	if p.AvailableQuantity > 0 {
		fmt.Fprintf(w, "Stock disponible (%d)\n", p.AvailableQuantity)
	}
	if p.SellerAddress != nil && p.SellerAddress.City.Name != "" {
		fmt.Fprintf(w, "Vendido desde %s, %s\n", p.SellerAddress.City.Name, p.SellerAddress.State.Name)
	}
	if p.Warranty != "" {
		fmt.Fprintln(w, p.Warranty)
	}

	if len(p.Attributes) > 0 {
		fmt.Fprintln(w, "\nCaracterísticas")
		for _, a := range p.Attributes {
			fmt.Fprintf(w, "  %s: %s\n", a.Name, a.ValueName)
		}
	}
	if p.Description != nil && strings.TrimSpace(p.Description.PlainText) != "" {
		fmt.Fprintln(w, "\nDescripción")
		fmt.Fprintln(w, p.Description.PlainText)
	}
	if p.Permalink != "" {
		fmt.Fprintf(w, "\n%s\n", p.Permalink)
	}
	return nil
}
