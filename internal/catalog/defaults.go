// Package catalog owns the static category seed list, the color palette used
// by charts, and the strategy that decides between persisted categories and
// the seed list.
package catalog

import "catatan/internal/core"

var defaults = []core.Category{
	{ID: "belanja", Label: "Belanja", IconKey: "FiShoppingCart", IconBg: "bg-rose-500", Flow: core.FlowExpense},
	{ID: "makanan", Label: "Makanan", IconKey: "FiCoffee", IconBg: "bg-amber-500", Flow: core.FlowExpense},
	{ID: "telepon", Label: "Telepon", IconKey: "FiPhone", IconBg: "bg-sky-500", Flow: core.FlowExpense},
	{ID: "hiburan", Label: "Hiburan", IconKey: "FiMonitor", IconBg: "bg-violet-500", Flow: core.FlowExpense},
	{ID: "pendidikan", Label: "Pendidikan", IconKey: "FiBook", IconBg: "bg-indigo-500", Flow: core.FlowExpense},
	{ID: "kecantikan", Label: "Kecantikan", IconKey: "FiScissors", IconBg: "bg-pink-500", Flow: core.FlowExpense},
	{ID: "olahraga", Label: "Olahraga", IconKey: "FiActivity", IconBg: "bg-green-500", Flow: core.FlowExpense},
	{ID: "sosial", Label: "Sosial", IconKey: "FiUsers", IconBg: "bg-cyan-500", Flow: core.FlowExpense},
	{ID: "transportasi", Label: "Transportasi", IconKey: "FiTruck", IconBg: "bg-emerald-500", Flow: core.FlowExpense},
	{ID: "pakaian", Label: "Pakaian", IconKey: "FiShoppingBag", IconBg: "bg-blue-500", Flow: core.FlowExpense},
	{ID: "mobil", Label: "Mobil", IconKey: "FiNavigation", IconBg: "bg-orange-500", Flow: core.FlowExpense},
	{ID: "minuman", Label: "Minuman", IconKey: "FiDroplet", IconBg: "bg-lime-500", Flow: core.FlowExpense},
	{ID: "rokok", Label: "Rokok", IconKey: "FiZap", IconBg: "bg-yellow-500", Flow: core.FlowExpense},
	{ID: "elektronik", Label: "Elektronik", IconKey: "FiHardDrive", IconBg: "bg-fuchsia-500", Flow: core.FlowExpense},
	{ID: "bepergian", Label: "Bepergian", IconKey: "FiSend", IconBg: "bg-teal-500", Flow: core.FlowExpense},
	{ID: "kesehatan", Label: "Kesehatan", IconKey: "FiHeart", IconBg: "bg-red-500", Flow: core.FlowExpense},
	{ID: "peliharaan", Label: "Peliharaan", IconKey: "FiHome", IconBg: "bg-slate-500", Flow: core.FlowExpense},
	{ID: "perbaikan", Label: "Perbaikan", IconKey: "FiTool", IconBg: "bg-stone-500", Flow: core.FlowExpense},
	{ID: "perumahan", Label: "Perumahan", IconKey: "FiHome", IconBg: "bg-neutral-500", Flow: core.FlowExpense},
	{ID: "rumah", Label: "Rumah", IconKey: "FiHome", IconBg: "bg-gray-500", Flow: core.FlowExpense},
	{ID: "hadiah", Label: "Hadiah", IconKey: "FiGift", IconBg: "bg-purple-500", Flow: core.FlowExpense},
	{ID: "donasi", Label: "Donasi", IconKey: "FiDollarSign", IconBg: "bg-amber-600", Flow: core.FlowExpense},
	{ID: "lotre", Label: "Lotre", IconKey: "FiGrid", IconBg: "bg-cyan-600", Flow: core.FlowExpense},
	{ID: "makanan-ringan", Label: "Makanan ringan", IconKey: "FiStar", IconBg: "bg-pink-600", Flow: core.FlowExpense},
	{ID: "anak-anak", Label: "Anak-anak", IconKey: "FiUser", IconBg: "bg-emerald-600", Flow: core.FlowExpense},
	{ID: "sayur-mayur", Label: "Sayur-mayur", IconKey: "FiPackage", IconBg: "bg-lime-600", Flow: core.FlowExpense},
	{ID: "buah", Label: "Buah", IconKey: "FiTarget", IconBg: "bg-orange-600", Flow: core.FlowExpense},
	{ID: "pengaturan", Label: "Pengaturan", IconKey: "FiSettings", IconBg: "bg-blue-600", Flow: core.FlowExpense},
	{ID: "gaji", Label: "Gaji", IconKey: "FiDollarSign", IconBg: "bg-emerald-400", Flow: core.FlowIncome},
	{ID: "bonus", Label: "Bonus", IconKey: "FiGift", IconBg: "bg-purple-400", Flow: core.FlowIncome},
	{ID: "investasi", Label: "Investasi", IconKey: "FiActivity", IconBg: "bg-sky-400", Flow: core.FlowIncome},
	{ID: "bisnis", Label: "Bisnis", IconKey: "FiShoppingCart", IconBg: "bg-rose-400", Flow: core.FlowIncome},
}

// Defaults returns a copy of the built-in seed categories.
func Defaults() []core.Category {
	return append([]core.Category(nil), defaults...)
}

// Filter keeps the categories of the given flow. An empty flow keeps all.
func Filter(cats []core.Category, flow core.Flow) []core.Category {
	out := make([]core.Category, 0, len(cats))
	for _, c := range cats {
		if flow == "" || c.Flow == flow {
			out = append(out, c)
		}
	}
	return out
}
