package ppu

const (
	nameTableBase   = 0x2000
	nameTableSize   = 0x400
	attributeOffset = 0x3C0
	tileBytes       = 16

	worldWidth  = Width * 2
	worldHeight = Height * 2

	spriteCount       = 64
	spriteBehind      = 0x20
	spriteFlipX       = 0x40
	spriteFlipY       = 0x80
	spritePaletteMask = 0x03
)

// tile caches the pattern row most recently fetched for the background.
type tile struct {
	valid   bool
	address uint16
	row     uint16
	low     uint8
	high    uint8
	palette uint8
}

// renderBackground draws the eight pixels starting at (x, y).
func (p *PPU) renderBackground(x, y int) error {
	backdrop, err := p.paletteColor(paletteBase)
	if err != nil {
		return err
	}

	if !p.Mask.BackgroundEnabled() {
		for i := 0; i < 8; i++ {
			p.image.Set(x+i, y, backdrop)
			p.opaque[y*Width+x+i] = false
		}
		return nil
	}

	nt := p.Control.NameTable()
	worldY := (y + int(p.ScrollY) + (nt>>1)*Height) % worldHeight

	var cached tile
	for i := 0; i < 8; i++ {
		px := x + i
		worldX := (px + int(p.ScrollX) + (nt&1)*Width) % worldWidth

		if err := p.fetchTile(&cached, worldX, worldY); err != nil {
			return err
		}

		bit := 7 - uint(worldX%8)
		pixel := (cached.low>>bit)&1 | ((cached.high>>bit)&1)<<1
		if px < 8 && p.Mask&MaskBackgroundLeft == 0 {
			pixel = 0
		}

		c := backdrop
		if pixel != 0 {
			c, err = p.paletteColor(paletteBase + uint16(cached.palette)*4 + uint16(pixel))
			if err != nil {
				return err
			}
		}
		p.image.Set(px, y, c)
		p.opaque[y*Width+px] = pixel != 0
	}
	return nil
}

// fetchTile loads the pattern row and palette for the tile covering the
// world coordinate, reusing t when it already holds that tile.
func (p *PPU) fetchTile(t *tile, worldX, worldY int) error {
	table := worldX/Width + (worldY/Height)*2
	tx := worldX % Width
	ty := worldY % Height

	base := uint16(nameTableBase + table*nameTableSize)
	address := base + uint16((ty/8)*32+tx/8)
	row := uint16(ty % 8)
	if t.valid && t.address == address && t.row == row {
		return nil
	}

	index, err := p.bus.Read(address)
	if err != nil {
		return err
	}
	attribute, err := p.bus.Read(base + attributeOffset + uint16((ty/32)*8+tx/32))
	if err != nil {
		return err
	}

	pattern := p.Control.BackgroundPatternBase() + uint16(index)*tileBytes + row
	low, err := p.bus.Read(pattern)
	if err != nil {
		return err
	}
	high, err := p.bus.Read(pattern + 8)
	if err != nil {
		return err
	}

	shift := uint(((ty/16)%2)*4 + ((tx/16)%2)*2)
	*t = tile{
		valid:   true,
		address: address,
		row:     row,
		low:     low,
		high:    high,
		palette: (attribute >> shift) & 0x3,
	}
	return nil
}

// renderSprites draws all 64 sprites over the finished background. Lower
// indices are drawn last so they end up on top.
func (p *PPU) renderSprites() error {
	if !p.Mask.SpritesEnabled() {
		return nil
	}

	height := p.Control.SpriteHeight()
	for i := spriteCount - 1; i >= 0; i-- {
		entry := p.spriteRAM[i*4 : i*4+4]
		if err := p.renderSprite(entry, height); err != nil {
			return err
		}
	}
	return nil
}

func (p *PPU) renderSprite(entry []uint8, height int) error {
	top := int(entry[0]) + 1
	index := entry[1]
	attributes := entry[2]
	left := int(entry[3])

	if top >= Height {
		return nil
	}

	paletteAddress := spritePalette + uint16(attributes&spritePaletteMask)*4

	for row := 0; row < height; row++ {
		y := top + row
		if y >= Height {
			break
		}

		patternRow := row
		if attributes&spriteFlipY != 0 {
			patternRow = height - 1 - row
		}
		low, high, err := p.spritePattern(index, patternRow)
		if err != nil {
			return err
		}

		for col := 0; col < 8; col++ {
			x := left + col
			if x >= Width {
				break
			}
			if x < 8 && p.Mask&MaskSpriteLeft == 0 {
				continue
			}

			bit := uint(7 - col)
			if attributes&spriteFlipX != 0 {
				bit = uint(col)
			}
			pixel := (low>>bit)&1 | ((high>>bit)&1)<<1
			if pixel == 0 {
				continue
			}
			if attributes&spriteBehind != 0 && p.opaque[y*Width+x] {
				continue
			}

			c, err := p.paletteColor(paletteAddress + uint16(pixel))
			if err != nil {
				return err
			}
			p.image.Set(x, y, c)
		}
	}
	return nil
}

// spritePattern returns the two bit planes of one sprite row. Tall sprites
// pick their pattern table from bit 0 of the tile index.
func (p *PPU) spritePattern(index uint8, row int) (uint8, uint8, error) {
	var address uint16
	if p.Control.SpriteHeight() == 16 {
		bank := uint16(index&1) * patternTableSize
		number := uint16(index &^ 1)
		if row >= 8 {
			number++
			row -= 8
		}
		address = bank + number*tileBytes + uint16(row)
	} else {
		address = p.Control.SpritePatternBase() + uint16(index)*tileBytes + uint16(row)
	}

	low, err := p.bus.Read(address)
	if err != nil {
		return 0, 0, err
	}
	high, err := p.bus.Read(address + 8)
	if err != nil {
		return 0, 0, err
	}
	return low, high, nil
}

func (p *PPU) paletteColor(address uint16) (RGB, error) {
	index, err := p.bus.Read(address)
	if err != nil {
		return RGB{}, err
	}
	return ColorFor(index), nil
}
