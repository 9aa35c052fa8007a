package controllers

import (
	"github.com/shashiranjanraj/pantry/app/services"
	"github.com/shashiranjanraj/pantry/pkg/ctx"
)

type ItemController struct {
	items *services.ItemService
}

// Index lists items. Optional filters: day, active, supplierId, categoryId.
func (c *ItemController) Index(x *ctx.Context) {
	list, err := c.items.List(x.Context(), x.Scope(), services.ItemFilter{
		Day:        x.Query("day"),
		Active:     queryBool(x, "active"),
		SupplierID: x.Query("supplierId"),
		CategoryID: x.Query("categoryId"),
	})
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(list)
}

func (c *ItemController) Show(x *ctx.Context) {
	item, err := c.items.Get(x.Context(), x.Scope(), x.Param("id"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(item)
}

func (c *ItemController) Store(x *ctx.Context) {
	var in services.ItemInput
	if !x.BindJSON(&in) {
		return
	}
	item, err := c.items.Create(x.Context(), x.Scope(), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Created(item)
}

func (c *ItemController) Update(x *ctx.Context) {
	var in services.ItemInput
	if !x.BindJSON(&in) {
		return
	}
	item, err := c.items.Update(x.Context(), x.Scope(), x.Param("id"), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(item)
}

func (c *ItemController) Destroy(x *ctx.Context) {
	if err := c.items.Delete(x.Context(), x.Scope(), x.Param("id")); err != nil {
		x.Fail(err)
		return
	}
	x.Message("Item deleted")
}

type SupplierController struct {
	suppliers *services.SupplierService
}

func (c *SupplierController) Index(x *ctx.Context) {
	list, err := c.suppliers.List(x.Context(), x.Scope())
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(list)
}

func (c *SupplierController) Show(x *ctx.Context) {
	s, err := c.suppliers.Get(x.Context(), x.Scope(), x.Param("id"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(s)
}

func (c *SupplierController) Store(x *ctx.Context) {
	var in services.SupplierInput
	if !x.BindJSON(&in) {
		return
	}
	s, err := c.suppliers.Create(x.Context(), x.Scope(), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Created(s)
}

func (c *SupplierController) Update(x *ctx.Context) {
	var in services.SupplierInput
	if !x.BindJSON(&in) {
		return
	}
	s, err := c.suppliers.Update(x.Context(), x.Scope(), x.Param("id"), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(s)
}

func (c *SupplierController) Destroy(x *ctx.Context) {
	if err := c.suppliers.Delete(x.Context(), x.Scope(), x.Param("id")); err != nil {
		x.Fail(err)
		return
	}
	x.Message("Supplier deleted")
}

type CategoryController struct {
	categories *services.CategoryService
}

func (c *CategoryController) Index(x *ctx.Context) {
	list, err := c.categories.List(x.Context(), x.Scope())
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(list)
}

func (c *CategoryController) Show(x *ctx.Context) {
	cat, err := c.categories.Get(x.Context(), x.Scope(), x.Param("id"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(cat)
}

func (c *CategoryController) Store(x *ctx.Context) {
	var in services.CategoryInput
	if !x.BindJSON(&in) {
		return
	}
	cat, err := c.categories.Create(x.Context(), x.Scope(), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Created(cat)
}

func (c *CategoryController) Update(x *ctx.Context) {
	var in services.CategoryInput
	if !x.BindJSON(&in) {
		return
	}
	cat, err := c.categories.Update(x.Context(), x.Scope(), x.Param("id"), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(cat)
}

func (c *CategoryController) Destroy(x *ctx.Context) {
	if err := c.categories.Delete(x.Context(), x.Scope(), x.Param("id")); err != nil {
		x.Fail(err)
		return
	}
	x.Message("Category deleted")
}

type UnitController struct {
	units *services.UnitService
}

func (c *UnitController) Index(x *ctx.Context) {
	list, err := c.units.List(x.Context(), x.Scope())
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(list)
}

func (c *UnitController) Show(x *ctx.Context) {
	u, err := c.units.Get(x.Context(), x.Scope(), x.Param("id"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(u)
}

func (c *UnitController) Store(x *ctx.Context) {
	var in services.UnitInput
	if !x.BindJSON(&in) {
		return
	}
	u, err := c.units.Create(x.Context(), x.Scope(), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Created(u)
}

func (c *UnitController) Update(x *ctx.Context) {
	var in services.UnitInput
	if !x.BindJSON(&in) {
		return
	}
	u, err := c.units.Update(x.Context(), x.Scope(), x.Param("id"), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(u)
}

func (c *UnitController) MakeDefault(x *ctx.Context) {
	u, err := c.units.SetDefault(x.Context(), x.Scope(), x.Param("id"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(u)
}

func (c *UnitController) Destroy(x *ctx.Context) {
	if err := c.units.Delete(x.Context(), x.Scope(), x.Param("id")); err != nil {
		x.Fail(err)
		return
	}
	x.Message("Unit deleted")
}
