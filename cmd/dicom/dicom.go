package dicom

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/h2non/filetype"
	"github.com/iCardioAI/encephalon-examples/cmd/common"
	"github.com/iCardioAI/encephalon-examples/pkg/archive"
	"github.com/iCardioAI/encephalon-examples/pkg/client"
	"github.com/iCardioAI/encephalon-examples/pkg/config"
	"github.com/iCardioAI/encephalon-examples/pkg/format"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/wandb/parallel"
)

type DicomOptions struct {
	StudyUUID     string
	UUID          string
	Output        string
	FileName      string
	Idempotent    bool
	Threads       int
	MaxUploadSize string
}

var options = DicomOptions{}

func NewDicomRootCmd() *cobra.Command {
	dicomCmd := &cobra.Command{
		Use:     "dicom [command]",
		Short:   "Upload, list and download DICOM files",
		GroupID: "resources",
	}

	dicomCmd.AddCommand(NewUploadCmd())
	dicomCmd.AddCommand(NewListCmd())
	dicomCmd.AddCommand(NewGetCmd())
	dicomCmd.AddCommand(NewDownloadCmd())
	dicomCmd.AddCommand(NewDeleteCmd())

	return dicomCmd
}

func NewUploadCmd() *cobra.Command {
	uploadCmd := &cobra.Command{
		Use:   "upload [files, directories or archives]",
		Short: "Upload DICOM files to a study",
		Long: `Upload DICOM files to a study. Arguments can be single files, directories or archives.
Directories are walked recursively, archives are expanded and every DICOM inside is uploaded individually.`,
		Example: `
# Upload two files to an existing study
encephalon dicom upload --study d5bbcbdd file1.dcm file2.dcm

# Expand a zip export and upload everything inside
encephalon dicom upload --study d5bbcbdd echo-export.zip

# Idempotent upload without a study, re-running never creates duplicates
encephalon dicom upload --idempotent dicoms/
		`,
		Args: cobra.MinimumNArgs(1),
		Run:  Upload,
	}
	uploadCmd.Flags().StringVarP(&options.StudyUUID, "study", "s", "", "Study UUID to attach the files to")
	uploadCmd.Flags().BoolVar(&options.Idempotent, "idempotent", false, "Upload without a study, the server deduplicates by file content")
	uploadCmd.Flags().IntVar(&options.Threads, "threads", 4, "Nr of parallel uploads")
	uploadCmd.Flags().StringVar(&options.MaxUploadSize, "max-upload-size", "500MB", "Max size per file or uncompressed archive, e.g. 250MB or 1GB")

	return uploadCmd
}

func Upload(cmd *cobra.Command, args []string) {
	if options.StudyUUID == "" && !options.Idempotent {
		log.Fatal().Msg("Either --study or --idempotent is required")
	}

	apiClient := common.BuildClient()
	uploaded := UploadPaths(context.Background(), apiClient, args, UploadOptions{
		StudyUUID:     options.StudyUUID,
		Idempotent:    options.Idempotent,
		Threads:       options.Threads,
		MaxUploadSize: options.MaxUploadSize,
	})

	log.Info().Int("count", uploaded).Msg("Upload finished")
}

// UploadOptions configures UploadPaths. The flow command reuses the engine
// with its own flag values.
type UploadOptions struct {
	StudyUUID     string
	Idempotent    bool
	Threads       int
	MaxUploadSize string
}

// UploadPaths uploads every DICOM reachable from the given paths and returns
// the number of successfully uploaded files. Single failures are logged and
// skipped so one corrupt file does not abort a large batch.
func UploadPaths(ctx context.Context, apiClient client.EncephalonApiClient, paths []string, opts UploadOptions) int {
	maxBytes, err := config.ParseMaxUploadSize(opts.MaxUploadSize)
	if err != nil {
		log.Fatal().Err(err).Str("maxUploadSize", opts.MaxUploadSize).Msg("Invalid max upload size")
	}
	if err := config.ValidateWorkerCount(opts.Threads); err != nil {
		log.Fatal().Err(err).Msg("Invalid thread count")
	}

	files := gatherFiles(paths)
	log.Info().Int("files", len(files)).Int("threads", opts.Threads).Msg("Uploading DICOMs")

	var uploaded atomic.Int64
	group := parallel.Limited(ctx, opts.Threads)
	for _, file := range files {
		group.Go(func(ctx context.Context) {
			uploaded.Add(uploadFile(apiClient, file, maxBytes, opts))
		})
	}
	group.Wait()

	return int(uploaded.Load())
}

func gatherFiles(paths []string) []string {
	files := []string{}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			log.Fatal().Err(err).Str("path", p).Msg("Cannot access path")
		}

		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			log.Fatal().Err(err).Str("path", p).Msg("Failed walking directory")
		}
	}

	return files
}

func uploadFile(apiClient client.EncephalonApiClient, path string, maxBytes int64, opts UploadOptions) int64 {
	// #nosec G304 - the user names the files to upload
	content, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("Failed reading file")
		return 0
	}

	name := filepath.Base(path)

	if archive.IsDicom(content) || strings.EqualFold(filepath.Ext(path), ".dcm") {
		if int64(len(content)) > maxBytes {
			log.Warn().Str("file", path).Int("size", len(content)).Msg("Skipping file larger than max upload size")
			return 0
		}
		return uploadDicom(apiClient, name, content, opts)
	}

	if filetype.IsArchive(content) {
		if filetype.Is(content, "zip") {
			uncompressed := format.CalculateZipFileSize(content)
			if uncompressed > uint64(maxBytes) {
				log.Warn().Str("file", path).Uint64("uncompressedSize", uncompressed).Msg("Skipping archive larger than max upload size")
				return 0
			}
		}

		count := int64(0)
		for _, dicom := range archive.CollectDicoms(name, content) {
			if int64(len(dicom.Content)) > maxBytes {
				log.Warn().Str("file", dicom.Name).Msg("Skipping archive entry larger than max upload size")
				continue
			}
			count = count + uploadDicom(apiClient, dicom.Name, dicom.Content, opts)
		}
		return count
	}

	log.Debug().Str("file", path).Msg("Skipping file, neither DICOM nor archive")
	return 0
}

func uploadDicom(apiClient client.EncephalonApiClient, fileName string, content []byte, opts UploadOptions) int64 {
	var dicom *client.Dicom
	var err error

	if opts.Idempotent {
		dicom, _, err = apiClient.UploadDicomIdempotent(fileName, bytes.NewReader(content))
	} else {
		dicom, _, err = apiClient.UploadDicom(opts.StudyUUID, fileName, bytes.NewReader(content))
	}

	if err != nil {
		log.Error().Err(err).Str("file", fileName).Msg("Failed uploading DICOM")
		return 0
	}

	log.Info().Str("uuid", dicom.UUID).Str("file", dicom.Name).Str("study", dicom.Study).Msg("DICOM uploaded")
	return 1
}

func NewListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List DICOMs, optionally filtered by study",
		Run:   List,
	}
	listCmd.Flags().StringVarP(&options.StudyUUID, "study", "s", "", "Only list DICOMs of this study")

	return listCmd
}

func List(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	count := 0
	nextPageUrl := ""
	for {
		dicoms, next, _, err := apiClient.ListDicoms(nextPageUrl, options.StudyUUID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed listing dicoms")
		}

		for _, dicom := range dicoms {
			log.Info().Str("uuid", dicom.UUID).Str("name", dicom.Name).Str("study", dicom.Study).Int64("fileSize", dicom.FileSize).Msg("DICOM")
			count = count + 1
		}

		if next == "" {
			break
		}
		nextPageUrl = next
	}

	log.Info().Int("count", count).Msg("Listed all dicoms")
}

func NewGetCmd() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show DICOM metadata",
		Run:   Get,
	}
	getCmd.Flags().StringVarP(&options.UUID, "uuid", "d", "", "DICOM UUID")
	err := getCmd.MarkFlagRequired("uuid")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking uuid required")
	}

	return getCmd
}

func Get(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	dicom, _, err := apiClient.GetDicom(options.UUID)
	if err != nil {
		log.Fatal().Err(err).Str("uuid", options.UUID).Msg("Failed fetching dicom")
	}

	log.Info().Str("uuid", dicom.UUID).Str("name", dicom.Name).Str("study", dicom.Study).Int64("fileSize", dicom.FileSize).Time("createdAt", dicom.CreatedAt).Msg("DICOM")
}

func NewDownloadCmd() *cobra.Command {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download the binary file content of a DICOM",
		Run:   Download,
	}
	downloadCmd.Flags().StringVarP(&options.UUID, "uuid", "d", "", "DICOM UUID")
	err := downloadCmd.MarkFlagRequired("uuid")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking uuid required")
	}
	downloadCmd.Flags().StringVarP(&options.Output, "output", "o", "", "Output path (default: the DICOM name in the current directory)")

	return downloadCmd
}

func Download(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	dicom, _, err := apiClient.GetDicom(options.UUID)
	if err != nil {
		log.Fatal().Err(err).Str("uuid", options.UUID).Msg("Failed fetching dicom")
	}

	content, err := apiClient.DownloadDicomFile(dicom.UUID, dicom.Name)
	if err != nil {
		log.Fatal().Err(err).Str("uuid", options.UUID).Msg("Failed downloading dicom file")
	}

	output := options.Output
	if output == "" {
		output = dicom.Name
	}

	err = os.WriteFile(output, content, format.FileUserReadWrite)
	if err != nil {
		log.Fatal().Err(err).Str("output", output).Msg("Failed writing dicom file")
	}

	log.Info().Str("uuid", dicom.UUID).Str("output", output).Int("bytes", len(content)).Msg("DICOM downloaded")
}

func NewDeleteCmd() *cobra.Command {
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a DICOM",
		Run:   Delete,
	}
	deleteCmd.Flags().StringVarP(&options.UUID, "uuid", "d", "", "DICOM UUID")
	err := deleteCmd.MarkFlagRequired("uuid")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking uuid required")
	}

	return deleteCmd
}

func Delete(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	_, err := apiClient.DeleteDicom(options.UUID)
	if err != nil {
		log.Fatal().Err(err).Str("uuid", options.UUID).Msg("Failed deleting dicom")
	}

	log.Info().Str("uuid", options.UUID).Msg("DICOM deleted")
}
