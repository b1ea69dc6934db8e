package archive

import (
	"os"
	"path"
	"strings"

	"github.com/h2non/filetype"
	"github.com/iCardioAI/encephalon-examples/pkg/format"
	"github.com/rs/zerolog/log"
	"golift.io/xtractr"
)

// Directory noise that studies exported from PACS viewers tend to carry.
var skippableNames = []string{"__MACOSX", ".DS_Store", "Thumbs.db"}

const maxRecursionDepth = 10

// ExtractedDicom is a single DICOM file pulled out of an uploaded archive.
type ExtractedDicom struct {
	Name    string
	Content []byte
}

// IsDicom reports whether content is a Part 10 DICOM file.
func IsDicom(content []byte) bool {
	return filetype.Is(content, "dcm")
}

// CollectDicoms extracts an archive and returns the DICOM files inside,
// recursing into nested archives. Non-DICOM files are skipped.
func CollectDicoms(archiveName string, content []byte) []ExtractedDicom {
	return collectDicoms(archiveName, content, 1)
}

func collectDicoms(archiveName string, content []byte, depth int) []ExtractedDicom {
	dicoms := []ExtractedDicom{}

	if depth > maxRecursionDepth {
		log.Debug().Str("file", archiveName).Int("recursionDepth", depth).Msg("Max archive recursion depth reached, skipping further extraction")
		return dicoms
	}

	fileType, err := filetype.Get(content)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Cannot determine file type")
		return dicoms
	}

	tmpArchiveFile, err := os.CreateTemp("", "encephalon-dicom-archive-*."+fileType.Extension)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Cannot create archive temp file")
		return dicoms
	}

	err = os.WriteFile(tmpArchiveFile.Name(), content, format.FileUserReadWrite)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Failed writing archive to disk")
		return dicoms
	}
	defer func() { _ = os.Remove(tmpArchiveFile.Name()) }()

	tmpArchiveFilesDirectory, err := os.MkdirTemp("", "encephalon-dicom-archive-out-")
	if err != nil {
		log.Error().Stack().Err(err).Msg("Cannot create archive temp directory")
		return dicoms
	}
	defer func() { _ = os.RemoveAll(tmpArchiveFilesDirectory) }()

	x := &xtractr.XFile{
		FilePath:  tmpArchiveFile.Name(),
		OutputDir: tmpArchiveFilesDirectory,
		FileMode:  0o600,
		DirMode:   0o700,
	}

	_, files, _, err := xtractr.ExtractFile(x)
	if err != nil {
		log.Debug().Str("err", err.Error()).Msg("Unable to extract DICOM archive")
		return dicoms
	}
	if files == nil {
		return dicoms
	}

	for _, fPath := range files {
		if format.IsDirectory(fPath) {
			continue
		}

		if isSkippable(fPath) {
			log.Debug().Str("file", fPath).Msg("Skipped archive noise entry")
			continue
		}

		// #nosec G304 - Reading extracted files from temp directory, path controlled by xtractr library
		fileBytes, err := os.ReadFile(fPath)
		if err != nil {
			log.Debug().Str("file", fPath).Stack().Str("err", err.Error()).Msg("Cannot read extracted file content")
			continue
		}

		currentFileName := path.Base(fPath)

		// DICOM also matches filetype's archive kind, check it first.
		if IsDicom(fileBytes) || strings.EqualFold(path.Ext(currentFileName), ".dcm") {
			dicoms = append(dicoms, ExtractedDicom{Name: currentFileName, Content: fileBytes})
			continue
		}

		if filetype.IsArchive(fileBytes) {
			log.Trace().Str("fileName", currentFileName).Str("parentArchive", archiveName).Int("depth", depth).Msg("Detected nested archive, recursing")
			dicoms = append(dicoms, collectDicoms(currentFileName, fileBytes, depth+1)...)
			continue
		}

		log.Debug().Str("file", currentFileName).Str("archive", archiveName).Msg("Skipped non-DICOM file in archive")
	}

	return dicoms
}

func isSkippable(fPath string) bool {
	for _, keyword := range skippableNames {
		if strings.Contains(fPath, keyword) {
			return true
		}
	}
	return false
}
