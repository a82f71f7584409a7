/*
 * @module service/summary/image_generator
 * @description 汇总图片生成器，绘制国家总数、估算GDP前五名和刷新时间
 * @architecture 分层架构 - 基础设施层
 * @stateFlow 绘制 -> 写临时文件 -> 重命名为缓存文件
 * @rules 缓存文件只在完整写入后才替换，读取方不会看到半张图片
 * @dependencies github.com/fogleman/gg, golang.org/x/image/font/basicfont
 */

package summary

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"country-exchange-service/service/models"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

const (
	// FileName 缓存图片文件名
	FileName = "summary.png"

	imageWidth  = 640
	imageHeight = 360
	margin      = 32.0
	lineHeight  = 24.0
)

// ImageGenerator 汇总图片生成器
type ImageGenerator struct {
	cacheDir string
}

// NewImageGenerator 创建汇总图片生成器
func NewImageGenerator(cacheDir string) *ImageGenerator {
	return &ImageGenerator{cacheDir: cacheDir}
}

// Path 缓存图片路径
func (g *ImageGenerator) Path() string {
	return filepath.Join(g.cacheDir, FileName)
}

// Render 生成汇总图片
func (g *ImageGenerator) Render(ctx context.Context, total int64, top []models.Country, timestamp time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	y := margin
	dc.SetRGB(0.1, 0.2, 0.45)
	dc.DrawString("Country Summary", margin, y)
	y += lineHeight * 1.5

	dc.SetRGB(0, 0, 0)
	dc.DrawString(fmt.Sprintf("Total countries: %d", total), margin, y)
	y += lineHeight

	dc.DrawString("Top 5 by estimated GDP:", margin, y)
	y += lineHeight
	if len(top) == 0 {
		dc.DrawString("  (no data)", margin, y)
		y += lineHeight
	}
	for i, c := range top {
		gdp := "n/a"
		if c.EstimatedGDP != nil {
			gdp = fmt.Sprintf("%.2f", *c.EstimatedGDP)
		}
		dc.DrawString(fmt.Sprintf("  %d. %s - %s", i+1, c.DisplayName(), gdp), margin, y)
		y += lineHeight
	}

	y += lineHeight / 2
	dc.SetRGB(0.4, 0.4, 0.4)
	dc.DrawString("Last refreshed: "+timestamp.UTC().Format(time.RFC3339), margin, y)

	if err := os.MkdirAll(g.cacheDir, 0o755); err != nil {
		return fmt.Errorf("创建缓存目录失败: %w", err)
	}

	tmp, err := os.CreateTemp(g.cacheDir, "summary-*.png")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := dc.EncodePNG(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("写入图片失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("写入图片失败: %w", err)
	}
	if err := os.Rename(tmpPath, g.Path()); err != nil {
		return fmt.Errorf("替换缓存图片失败: %w", err)
	}

	slog.Info("汇总图片已生成", "path", g.Path(), "total", total)
	return nil
}
