package restapi

import (
	"github.com/laiyunwu/casestudy12/internal/allocation"
	"github.com/laiyunwu/casestudy12/internal/models"
)

// case1References builds the lookup lists the dashboard needs alongside a
// forecast: reference products with their most recent observed price, the
// history's regions, and its week labels.
func (api *RestAPI) case1References() models.ReferencesModel {
	c := api.Data.Case1()

	// Later rows win, so the price reflects the latest record per product.
	prices := make(map[string]float64)
	for _, rec := range c.Records {
		prices[rec.Product] = rec.Price
	}

	products := make([]models.ProductReference, 0, len(prices))
	for _, p := range c.Products() {
		products = append(products, models.NewProductReference(p, prices[p], 0))
	}

	return models.ReferencesModel{
		Products: products,
		Regions:  c.Regions(),
		Channels: []string{},
		Weeks:    c.Weeks(),
	}
}

// case2References mirrors case1References for the allocation dataset, with
// default product priorities in place of prices.
func (api *RestAPI) case2References() models.ReferencesModel {
	c := api.Data.Case2()
	regions := c.Regions()
	priorities := allocation.DefaultPriorities(c.Products(), regions)

	products := make([]models.ProductReference, 0)
	for _, p := range c.Products() {
		products = append(products, models.NewProductReference(p, 0, priorities.Product[p]))
	}

	return models.ReferencesModel{
		Products: products,
		Regions:  regions,
		Channels: c.Channels(),
		Weeks:    c.DemandWeeks,
	}
}
