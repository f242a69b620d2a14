package model

import "strings"

// Category is a coarse file type derived from the name extension.
type Category int

const (
	CategoryOther Category = iota
	CategoryMedia
	CategoryCode
	CategoryArchive
	CategoryDocument
	CategorySystem
	CategoryExecutable
)

func (c Category) String() string {
	switch c {
	case CategoryMedia:
		return "media"
	case CategoryCode:
		return "code"
	case CategoryArchive:
		return "archives"
	case CategoryDocument:
		return "documents"
	case CategorySystem:
		return "system"
	case CategoryExecutable:
		return "executables"
	default:
		return "other"
	}
}

var categoryExtensions = map[Category]string{
	CategoryMedia: ".jpg .jpeg .png .gif .bmp .svg .webp .ico .tiff .tif .psd .raw .heic .avif " +
		".mp4 .mkv .avi .mov .webm .m4v .mpg .mpeg .mp3 .flac .wav .aac .ogg .m4a .opus .mid",
	CategoryCode: ".go .py .js .jsx .ts .tsx .rs .c .cc .cpp .h .hpp .java .kt .swift .rb .php .cs " +
		".scala .ex .exs .erl .hs .ml .lua .r .dart .vue .html .htm .css .scss .sql .sh .bash .zsh " +
		".ps1 .bat .zig .asm .s .pl .json .yaml .yml .toml .xml .proto .graphql .mod .sum",
	CategoryArchive: ".zip .tar .gz .bz2 .xz .zst .lz4 .rar .7z .iso .dmg .deb .rpm .tgz .txz .jar .war",
	CategoryDocument: ".pdf .doc .docx .xls .xlsx .ppt .pptx .odt .ods .odp .rtf .txt .md .rst .tex " +
		".csv .tsv .epub",
	CategorySystem: ".log .bak .tmp .swp .pid .lock .cache .sock .db .sqlite .ini .cfg .conf .plist " +
		".sys .dll .dylib .so",
	CategoryExecutable: ".exe .msi .bin .elf .out .wasm .pyc .class .o .a",
}

var extCategory = func() map[string]Category {
	m := make(map[string]Category)
	for cat, exts := range categoryExtensions {
		for _, ext := range strings.Fields(exts) {
			m[ext] = cat
		}
	}
	return m
}()

// CategoryOf classifies a file by the extension of the last element of name.
// A leading dot alone does not make an extension.
func CategoryOf(name string) Category {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return CategoryOther
	}
	return extCategory[strings.ToLower(name[dot:])]
}

// CategoryCounts tallies files per category.
type CategoryCounts map[Category]uint64

// Add classifies name and counts it.
func (c CategoryCounts) Add(name string) {
	c[CategoryOf(name)]++
}
