package catalog

import (
	"strconv"
	"strings"
)

// DefaultColor is used for unknown palette classes and unknown categories.
const DefaultColor = "#3f3f46"

var palette = map[string]string{
	"bg-rose-500":    "#f43f5e",
	"bg-rose-400":    "#fb7185",
	"bg-amber-500":   "#f59e0b",
	"bg-amber-600":   "#d97706",
	"bg-sky-500":     "#0ea5e9",
	"bg-sky-400":     "#38bdf8",
	"bg-violet-500":  "#8b5cf6",
	"bg-indigo-500":  "#6366f1",
	"bg-pink-500":    "#ec4899",
	"bg-pink-600":    "#db2777",
	"bg-green-500":   "#22c55e",
	"bg-cyan-500":    "#06b6d4",
	"bg-cyan-600":    "#0891b2",
	"bg-emerald-500": "#10b981",
	"bg-emerald-600": "#059669",
	"bg-emerald-400": "#34d399",
	"bg-blue-500":    "#3b82f6",
	"bg-blue-600":    "#2563eb",
	"bg-orange-500":  "#f97316",
	"bg-orange-600":  "#ea580c",
	"bg-lime-500":    "#84cc16",
	"bg-lime-600":    "#65a30d",
	"bg-yellow-500":  "#eab308",
	"bg-fuchsia-500": "#d946ef",
	"bg-teal-500":    "#14b8a6",
	"bg-red-500":     "#ef4444",
	"bg-slate-500":   "#64748b",
	"bg-stone-500":   "#78716c",
	"bg-neutral-500": "#737373",
	"bg-gray-500":    "#6b7280",
	"bg-purple-500":  "#a855f7",
	"bg-purple-400":  "#c084fc",
	"bg-white/10":    "rgba(255, 255, 255, 0.1)",
}

// ResolveColor maps a palette class to a CSS color. Literal hex colors pass
// through; anything else resolves to DefaultColor.
func ResolveColor(class string) string {
	if class == "" {
		return DefaultColor
	}
	if c, ok := palette[class]; ok {
		return c
	}
	if strings.HasPrefix(class, "#") {
		return class
	}
	return DefaultColor
}

// IsLightColor reports whether a hex color is light enough to need dark text.
func IsLightColor(hex string) bool {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = hex + hex
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return false
	}
	r := float64((v >> 16) & 0xff)
	g := float64((v >> 8) & 0xff)
	b := float64(v & 0xff)
	return (0.299*r+0.587*g+0.114*b)/255 > 0.7
}
